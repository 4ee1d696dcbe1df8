package tmpl

import (
	"fmt"
	"html"
	htmltemplate "html/template"
	"reflect"
	"strings"
	texttemplate "text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nramenta/deco/internal/obfuscate"
)

// HTMLFuncs returns the helpers registered on layout templates. Helpers that
// produce markup return template.HTML so the layout does not escape them.
func HTMLFuncs() htmltemplate.FuncMap {
	return htmltemplate.FuncMap{
		"encode_email": func(v interface{}) htmltemplate.HTML {
			return htmltemplate.HTML(obfuscate.Email(toString(v), false))
		},
		"mailto": func(v interface{}) htmltemplate.HTML {
			return htmltemplate.HTML(obfuscate.Email(toString(v), true))
		},
		"raw": func(v interface{}) htmltemplate.HTML {
			return htmltemplate.HTML(toString(v))
		},
		// Interpolation is already escaped in layouts.
		"escape":  toString,
		"upper":   upper,
		"lower":   lower,
		"title":   title,
		"default": defaultValue,
		"join":    join,
	}
}

// TextFuncs returns the helpers registered on inline (page body) templates.
// Nothing is escaped unless the escape helper is used.
func TextFuncs() texttemplate.FuncMap {
	return texttemplate.FuncMap{
		"encode_email": func(v interface{}) string {
			return obfuscate.Email(toString(v), false)
		},
		"mailto": func(v interface{}) string {
			return obfuscate.Email(toString(v), true)
		},
		"raw":     toString,
		"escape":  func(v interface{}) string { return html.EscapeString(toString(v)) },
		"upper":   upper,
		"lower":   lower,
		"title":   title,
		"default": defaultValue,
		"join":    join,
	}
}

func toString(v interface{}) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprint(v)
	}
}

func upper(v interface{}) string { return strings.ToUpper(toString(v)) }

func lower(v interface{}) string { return strings.ToLower(toString(v)) }

// title is created per call: a cases.Caser keeps state between calls.
func title(v interface{}) string {
	return cases.Title(language.English).String(toString(v))
}

// defaultValue returns def when v is nil or an empty string.
func defaultValue(def, v interface{}) interface{} {
	if v == nil {
		return def
	}
	if s, ok := v.(string); ok && s == "" {
		return def
	}
	return v
}

func join(sep string, v interface{}) string {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return toString(v)
	}
	parts := make([]string, rv.Len())
	for i := range parts {
		parts[i] = toString(rv.Index(i).Interface())
	}
	return strings.Join(parts, sep)
}

package model

// Context is the variable set a template is expanded with.
type Context map[string]interface{}

// Merge builds a Context from layers where the first layer defining a key
// wins. A key present with a nil value still shadows later layers.
func Merge(layers ...map[string]interface{}) Context {
	ctx := Context{}
	for _, layer := range layers {
		for k, v := range layer {
			if _, ok := ctx[k]; !ok {
				ctx[k] = v
			}
		}
	}
	return ctx
}

// Layout returns the layout identifier, if the context names one.
func (c Context) Layout() (string, bool) {
	layout, ok := c["layout"].(string)
	if !ok || layout == "" {
		return "", false
	}
	return layout, true
}

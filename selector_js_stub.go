//go:build !js_select

package store

// NewJSSelector is unavailable without the js_select build tag.
func NewJSSelector(expression string, opts ...JSSelectorOption) (Selector, error) {
	_ = applyJSSelectorOptions(opts)
	return nil, nil
}

func jsSelectorAvailable() bool {
	return false
}

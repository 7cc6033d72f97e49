package template

// MergeContexts layers template data maps; keys in later maps win.
// Nil maps are skipped.
func MergeContexts(contexts ...map[string]interface{}) map[string]interface{} {
	size := 0
	for _, c := range contexts {
		size += len(c)
	}
	result := make(map[string]interface{}, size)
	for _, c := range contexts {
		for key, value := range c {
			result[key] = value
		}
	}
	return result
}

package utils

// ToStringSlice keeps the string elements of a decoded JSON array, e.g. a
// "roles" or "amr" claim.
func ToStringSlice(v any) []string {
	slice, ok := v.([]any)
	if !ok {
		if s, ok := v.(string); ok && s != "" {
			return []string{s}
		}
		return nil
	}
	stringSlice := make([]string, 0, len(slice))
	for _, v := range slice {
		if s, ok := v.(string); ok {
			stringSlice = append(stringSlice, s)
		}
	}
	return stringSlice
}

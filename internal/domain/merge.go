package domain

// Fill-missing-fields merge helpers. Existing values win; a record value is
// adopted only where the entity has none.

func fillString(dst *string, src string) {
	if *dst == "" && src != "" {
		*dst = src
	}
}

func fillIntPtr(dst **int, src *int) {
	if *dst == nil && src != nil {
		v := *src
		*dst = &v
	}
}

func fillInt(dst *int, src int) {
	if *dst == 0 && src != 0 {
		*dst = src
	}
}

func maxInt(a, b int) int {
	if b > a {
		return b
	}
	return a
}

// unionStrings merges two string sets preserving first-seen order.
func unionStrings(existing, incoming []string) []string {
	seen := make(map[string]bool, len(existing)+len(incoming))
	out := make([]string, 0, len(existing)+len(incoming))
	for _, s := range existing {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	for _, s := range incoming {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

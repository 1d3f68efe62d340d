package extract

// MissingRaw lists the fields whose elements could not be located.
func MissingRaw(raw RawProduct) []Field {
	var missing []Field
	if !raw.Title.IsPresent() {
		missing = append(missing, FieldTitle)
	}
	if !raw.Price.IsPresent() {
		missing = append(missing, FieldPrice)
	}
	if !raw.Image.IsPresent() {
		missing = append(missing, FieldImage)
	}
	return missing
}

// MissingCleaned lists the fields whose cleaned values are empty. A price of
// zero counts as missing unless allowZeroPrice is set; negative prices always do.
func MissingCleaned(c Cleaned, allowZeroPrice bool) []Field {
	var missing []Field
	if c.Title == "" {
		missing = append(missing, FieldTitle)
	}
	if !priceOK(c.Price, allowZeroPrice) {
		missing = append(missing, FieldPrice)
	}
	if c.ImageURL == "" {
		missing = append(missing, FieldImage)
	}
	return missing
}

func priceOK(p Price, allowZero bool) bool {
	switch {
	case !p.Valid:
		return false
	case p.Value > 0:
		return true
	case p.Value == 0:
		return allowZero
	default:
		return false
	}
}

func allMissing(missing []Field) bool {
	return len(missing) == 3
}

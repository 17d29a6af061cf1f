package sanitizer

import "vntrips/pkg/model"

func NormalizeLocalized(t model.LocalizedText) model.LocalizedText {
	return model.LocalizedText{
		En: TrimAndNormalize(t.En),
		Vi: TrimAndNormalize(t.Vi),
	}
}

func NormalizeLocalizedSlice(items []model.LocalizedText) []model.LocalizedText {
	if len(items) == 0 {
		return []model.LocalizedText{}
	}

	result := make([]model.LocalizedText, 0, len(items))
	for _, item := range items {
		normalized := NormalizeLocalized(item)
		if normalized.Empty() {
			continue
		}
		result = append(result, normalized)
	}

	return result
}

func NormalizeCustomerInfo(info model.CustomerInfo) model.CustomerInfo {
	return model.CustomerInfo{
		Name:    NormalizeName(info.Name),
		Email:   NormalizeEmail(info.Email),
		Phone:   NormalizePhone(info.Phone),
		Country: TrimAndNormalize(info.Country),
	}
}

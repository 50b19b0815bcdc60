package models

// Code is one billing-code catalog entry. The catalog is reference data loaded
// from an external import; the engine only reads it.
type Code struct {
	ID             string  `json:"id,omitempty" bson:"_id,omitempty"`
	Code           string  `json:"code" bson:"code"`
	Description    string  `json:"description" bson:"description"`
	Place          string  `json:"place,omitempty" bson:"place,omitempty"`
	Leaf           string  `json:"leaf,omitempty" bson:"leaf,omitempty"`
	Level1Group    string  `json:"level1Group,omitempty" bson:"level1Group,omitempty"`
	Level2Group    string  `json:"level2Group,omitempty" bson:"level2Group,omitempty"`
	TariffValue    float64 `json:"tariffValue,omitempty" bson:"tariffValue,omitempty"`
	ExtraUnitValue float64 `json:"extraUnitValue,omitempty" bson:"extraUnitValue,omitempty"`
	Indicators     string  `json:"indicators,omitempty" bson:"indicators,omitempty"`
	Active         bool    `json:"active" bson:"active"`
}

// Establishment is one practice location. GMF is an external flag; nil means
// the attribute is unknown and the location is treated as non-qualifying.
type Establishment struct {
	ID     string `json:"id,omitempty" bson:"_id,omitempty"`
	Numero string `json:"numero" bson:"numero"`
	Name   string `json:"name,omitempty" bson:"name,omitempty"`
	GMF    *bool  `json:"gmf,omitempty" bson:"gmf,omitempty"`
}

// ReferenceSet is the immutable reference-data snapshot handed to handlers so
// they stay pure: exact-key lookups only, resolved once before dispatch.
type ReferenceSet struct {
	// Leaf description per billing code, for description-pattern rules.
	CodeLeaf map[string]string
	// Description group (level2) per billing code, for qualifying-visit rules.
	CodeGroup map[string]string
	// GMF flag per establishment numero. Missing keys are non-qualifying.
	GMFEstablishments map[string]bool
}

// IsQualifyingEstablishment reports whether the practice location carries the
// GMF flag. Unknown locations never qualify.
func (rs ReferenceSet) IsQualifyingEstablishment(numero string) bool {
	if rs.GMFEstablishments == nil {
		return false
	}
	return rs.GMFEstablishments[numero]
}

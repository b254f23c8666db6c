package threshold

// Set is a user's fully-resolved threshold configuration: min/max bounds
// for every monitored quantity. A stored set always has every field
// present, because updates apply onto a complete default (see Adapter).
type Set struct {
	TemperatureMin float64 `json:"temperatureMin"`
	TemperatureMax float64 `json:"temperatureMax"`
	HumidityMin    float64 `json:"humidityMin"`
	HumidityMax    float64 `json:"humidityMax"`
	LightMin       float64 `json:"lightMin"`
	LightMax       float64 `json:"lightMax"`
	MoistureMin    float64 `json:"moistureMin"`
	MoistureMax    float64 `json:"moistureMax"`
}

// Update is a partial threshold update. Nil fields are left unchanged by
// the merge; the update is monotonic and never destructive.
type Update struct {
	TemperatureMin *float64 `json:"temperatureMin,omitempty"`
	TemperatureMax *float64 `json:"temperatureMax,omitempty"`
	HumidityMin    *float64 `json:"humidityMin,omitempty"`
	HumidityMax    *float64 `json:"humidityMax,omitempty"`
	LightMin       *float64 `json:"lightMin,omitempty"`
	LightMax       *float64 `json:"lightMax,omitempty"`
	MoistureMin    *float64 `json:"moistureMin,omitempty"`
	MoistureMax    *float64 `json:"moistureMax,omitempty"`
}

// DefaultSet returns the complete default bounds a first update applies
// onto.
func DefaultSet() Set {
	return Set{
		TemperatureMin: 10,
		TemperatureMax: 35,
		HumidityMin:    40,
		HumidityMax:    80,
		LightMin:       20,
		LightMax:       80,
		MoistureMin:    30,
		MoistureMax:    70,
	}
}

// Fields returns the set fields present in the update, keyed by their
// store field names.
func (u Update) Fields() map[string]any {
	fields := make(map[string]any)
	put := func(name string, v *float64) {
		if v != nil {
			fields[name] = *v
		}
	}
	put("temperatureMin", u.TemperatureMin)
	put("temperatureMax", u.TemperatureMax)
	put("humidityMin", u.HumidityMin)
	put("humidityMax", u.HumidityMax)
	put("lightMin", u.LightMin)
	put("lightMax", u.LightMax)
	put("moistureMin", u.MoistureMin)
	put("moistureMax", u.MoistureMax)
	return fields
}

// applyTo writes the update's present fields onto a set.
func (u Update) applyTo(s *Set) {
	if u.TemperatureMin != nil {
		s.TemperatureMin = *u.TemperatureMin
	}
	if u.TemperatureMax != nil {
		s.TemperatureMax = *u.TemperatureMax
	}
	if u.HumidityMin != nil {
		s.HumidityMin = *u.HumidityMin
	}
	if u.HumidityMax != nil {
		s.HumidityMax = *u.HumidityMax
	}
	if u.LightMin != nil {
		s.LightMin = *u.LightMin
	}
	if u.LightMax != nil {
		s.LightMax = *u.LightMax
	}
	if u.MoistureMin != nil {
		s.MoistureMin = *u.MoistureMin
	}
	if u.MoistureMax != nil {
		s.MoistureMax = *u.MoistureMax
	}
}

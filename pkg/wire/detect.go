package wire

// Shape identifies which of the known document layouts a JSON payload uses.
type Shape string

const (
	// ShapeCanonical is the current flow document (screens + routing_model).
	ShapeCanonical Shape = "canonical"
	// ShapeLegacyForm is the pre-graph flat form export: a title plus a list
	// of fields, no screens.
	ShapeLegacyForm Shape = "legacy_form"
	// ShapeBooking is the scheduling-bot configuration file that predates the
	// editor entirely.
	ShapeBooking Shape = "booking"
	// ShapeUnknown means none of the discriminator keys matched.
	ShapeUnknown Shape = "unknown"
)

// DetectShape inspects top-level keys only. Canonical wins over the legacy
// discriminators so documents that carry both (already-upgraded exports) are
// not re-upgraded.
func DetectShape(doc map[string]any) Shape {
	if _, ok := doc["routing_model"]; ok {
		return ShapeCanonical
	}
	if _, ok := doc["data_api_version"]; ok {
		return ShapeCanonical
	}
	if _, ok := doc["screens"]; ok {
		return ShapeCanonical
	}
	if _, ok := doc["fields"]; ok {
		return ShapeLegacyForm
	}
	if _, ok := doc["booking"]; ok {
		return ShapeBooking
	}
	if _, ok := doc["services"]; ok {
		return ShapeBooking
	}
	return ShapeUnknown
}

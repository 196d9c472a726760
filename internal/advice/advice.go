// Package advice maps a diagnosed rice-leaf condition to a fixed
// treatment recommendation.
package advice

const fallback = "Condition not recognized. Consult a local agricultural extension officer before applying any treatment."

var table = map[string]string{
	"Bacterial Leaf Blight": "Drain the field and avoid excess nitrogen. Apply a copper-based bactericide and plant resistant varieties next season.",
	"Brown Spot":            "Correct potassium and silicon deficiency in the soil. Treat seeds with a fungicide before the next planting.",
	"Healthy":               "No disease detected. Maintain balanced fertilization and regular field monitoring.",
	"Leaf Blast":            "Apply a tricyclazole-based fungicide at the first sign of lesions. Split nitrogen applications and keep the field flooded.",
	"Leaf Scald":            "Remove infected residue after harvest and reduce leaf wetness. Use certified disease-free seed.",
	"Narrow Brown Spot":     "Apply a propiconazole fungicide at booting stage. Rotate with resistant varieties to limit spread.",
	"Sheath Blight":         "Lower plant density and avoid over-fertilizing with nitrogen. Apply a validamycin or hexaconazole fungicide at tillering.",
}

// For returns the recommendation for a diagnosed label, or a generic
// consult-an-expert message for labels not in the table.
func For(label string) string {
	if s, ok := table[label]; ok {
		return s
	}
	return fallback
}

// AngelaMos | 2026
// remedies.go

package prediction

const fallbackRemedy = "No specific solution available. Please consult an expert."

var remedies = map[string]string{
	"Apple___Apple_scab":          "Apply fungicides and remove infected leaves.",
	"Apple___Black_rot":           "Prune and destroy infected branches; use copper-based sprays.",
	"Apple___Cedar_apple_rust":    "Use fungicides and plant disease-resistant varieties.",
	"Corn_(maize)___Common_rust_": "Apply fungicides and practice crop rotation.",
	"Tomato___Late_blight":        "Remove infected plants and use copper fungicides.",
}

func Remedy(label string) string {
	if r, ok := remedies[label]; ok {
		return r
	}
	return fallbackRemedy
}

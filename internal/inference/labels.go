// AngelaMos | 2026
// labels.go

package inference

import (
	"strings"

	"github.com/samber/lo"
)

// Labels is the classifier's output vocabulary. Index i of the model's
// score vector belongs to Labels[i]; the order must never change.
var Labels = []string{
	"Apple___Apple_scab",
	"Apple___Black_rot",
	"Apple___Cedar_apple_rust",
	"Apple___healthy",
	"Blueberry___healthy",
	"Cherry_(including_sour)___Powdery_mildew",
	"Cherry_(including_sour)___healthy",
	"Corn_(maize)___Cercospora_leaf_spot Gray_leaf_spot",
	"Corn_(maize)___Common_rust_",
	"Corn_(maize)___Northern_Leaf_Blight",
	"Corn_(maize)___healthy",
	"Grape___Black_rot",
	"Grape___Esca_(Black_Measles)",
	"Grape___Leaf_blight_(Isariopsis_Leaf_Spot)",
	"Grape___healthy",
	"Orange___Haunglongbing_(Citrus_greening)",
	"Peach___Bacterial_spot",
	"Peach___healthy",
	"Pepper,_bell___Bacterial_spot",
	"Pepper,_bell___healthy",
	"Potato___Early_blight",
	"Potato___Late_blight",
	"Potato___healthy",
	"Raspberry___healthy",
	"Soybean___healthy",
	"Squash___Powdery_mildew",
	"Strawberry___Leaf_scorch",
	"Strawberry___healthy",
	"Tomato___Bacterial_spot",
	"Tomato___Early_blight",
	"Tomato___Late_blight",
	"Tomato___Leaf_Mold",
	"Tomato___Septoria_leaf_spot",
	"Tomato___Spider_mites Two-spotted_spider_mite",
	"Tomato___Target_Spot",
	"Tomato___Tomato_Yellow_Leaf_Curl_Virus",
	"Tomato___Tomato_mosaic_virus",
	"Tomato___healthy",
}

const NumClasses = 38

func Label(index int) (string, bool) {
	if index < 0 || index >= len(Labels) {
		return "", false
	}
	return Labels[index], true
}

// IndexOf returns the class index of label, or -1.
func IndexOf(label string) int {
	return lo.IndexOf(Labels, label)
}

// Disease describes one label in a form readable by people: the crop and
// the condition, split on the triple underscore.
type Disease struct {
	Index     int    `json:"index"`
	Label     string `json:"label"`
	Crop      string `json:"crop"`
	Condition string `json:"condition"`
	Healthy   bool   `json:"healthy"`
}

func Diseases() []Disease {
	return lo.Map(Labels, func(label string, i int) Disease {
		crop, condition, _ := strings.Cut(label, "___")
		return Disease{
			Index:     i,
			Label:     label,
			Crop:      strings.ReplaceAll(crop, "_", " "),
			Condition: strings.TrimSpace(strings.ReplaceAll(condition, "_", " ")),
			Healthy:   condition == "healthy",
		}
	})
}

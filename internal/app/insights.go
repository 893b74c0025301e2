package app

// insightThreshold is the confidence percentage at which the advisory content
// switches from prevention to care, and facility lookup becomes worthwhile.
const insightThreshold = 20.0

var positiveInsights = []string{
	"Get Plenty of Rest: Your body needs energy to fight infection.",
	"Stay Hydrated: Fluids help loosen mucus and prevent dehydration.",
	"Follow Medical Advice: Take all medications as prescribed by your doctor.",
	"Manage Symptoms: Consult a doctor about over-the-counter symptom relief.",
	"Monitor Your Breathing: Seek immediate care if breathing becomes difficult.",
}

var negativeInsights = []string{
	"Practice Good Hygiene: Wash hands frequently.",
	"Avoid Smoking: Smoking damages your lungs.",
	"Get Vaccinated: Ask your doctor about pneumonia and flu vaccines.",
	"Maintain a Healthy Lifestyle: A balanced diet and exercise boost your immune system.",
	"Schedule Regular Checkups: Routine screenings catch problems early.",
}

// SelectInsights returns the care-focused list when the confidence percentage
// reaches the threshold, otherwise the prevention-focused list.
func SelectInsights(percent float64) []string {
	if percent >= insightThreshold {
		return positiveInsights
	}
	return negativeInsights
}

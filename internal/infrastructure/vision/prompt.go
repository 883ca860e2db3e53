package vision

func buildExtractionPrompt() string {
	return `You are a cat identification assistant. Describe the cat in the attached photo.
Return a strict JSON object with keys:
breed (string), colors (array of strings), patterns (array of strings),
distinctive_features (array of strings), estimated_age (one of: young, adult, senior),
size (one of: small, medium, large).
Omit any key you cannot determine from the photo. Use lowercase snake_case breed
names (for example domestic_shorthair). No markdown, no extra keys, no prose.`
}

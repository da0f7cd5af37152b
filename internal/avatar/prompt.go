package avatar

import "strings"

// basePrompt is the fixed style template for every generation. The
// single-figurine and no-text constraints are repeated up front because
// the generator tends to ignore them when they only appear once.
const basePrompt = `A 3D stylized character in the form of a single figurine on a decorative stand, made in a cartoonish but proportionally realistic style. Natural build, slightly enlarged head (not exaggerated), clean and even background, smooth textures, soft shapes. Facial features are simplified but recognizable, the expression is friendly. Relaxed posing, hands at the sides or one on the belt. The figurine stands on a simple elegant base without any text or name plaque. The overall style resembles a high-quality collectible figurine or avatar, suitable for personalized souvenirs.

IMPORTANT:
1. Create only ONE 3D figurine (not two or more)
2. The figurine should DIRECTLY match the person in the reference photo, including their facial features, hairstyle, and general appearance
3. Do not include any text, name, or writing on the base or anywhere in the image
4. The figurine should be immediately recognizable as this specific person`

const promptHeader = "CREATE A SINGLE 3D FIGURINE WITHOUT ANY TEXT OR NAME ON THE BASE OR ANYWHERE IN THE IMAGE."

// BuildPrompt assembles the final generation prompt from the fixed
// template, the gender tag, the analysis description and the user's
// optional freeform modifiers.
func BuildPrompt(gender, analysis, customPrompt string) string {
	var b strings.Builder
	b.WriteString(promptHeader)
	b.WriteString("\n\n")

	switch strings.ToLower(strings.TrimSpace(gender)) {
	case "male":
		b.WriteString("MALE CHARACTER.\n\n")
	case "female":
		b.WriteString("FEMALE CHARACTER.\n\n")
	}

	b.WriteString(basePrompt)

	if custom := strings.TrimSpace(customPrompt); custom != "" {
		b.WriteString("\n\nAdditional style details: ")
		b.WriteString(custom)
	}

	b.WriteString("\n\nDetails of the person: ")
	b.WriteString(analysis)

	return b.String()
}

package models

// Theme modes.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Animation intensity levels.
const (
	AnimationMinimal  = "minimal"
	AnimationModerate = "moderate"
	AnimationFull     = "full"
)

// ThemePreferences holds the user's visual preferences. The core never
// interprets these; they ride along in the profile and are persisted with it.
type ThemePreferences struct {
	Mode               string `json:"mode"`
	AccentColor        string `json:"accentColor"`
	AnimationIntensity string `json:"animationIntensity"`
	FontSize           int    `json:"fontSize"`
}

// UserProfile is the user's dietary identity and app preferences.
type UserProfile struct {
	Allergens           []string         `json:"allergens"`
	DietaryRestrictions []string         `json:"dietaryRestrictions"`
	Theme               ThemePreferences `json:"theme"`
	ExpertMode          bool             `json:"expertMode"`
}

// DefaultUserProfile returns the profile created at first launch.
func DefaultUserProfile() UserProfile {
	return UserProfile{
		Allergens:           []string{},
		DietaryRestrictions: []string{},
		Theme: ThemePreferences{
			Mode:               ThemeDark,
			AccentColor:        "#0066FF",
			AnimationIntensity: AnimationFull,
			FontSize:           16,
		},
		ExpertMode: false,
	}
}

// Allergens is the catalog of common allergens offered during onboarding.
var Allergens = []string{
	"Milk", "Eggs", "Fish", "Shellfish", "Tree Nuts", "Peanuts",
	"Wheat", "Soybeans", "Sesame", "Gluten",
}

// DietaryPreferences is the catalog of supported dietary restrictions.
var DietaryPreferences = []string{
	"Vegan", "Vegetarian", "Keto", "Paleo", "Organic Only", "Non-GMO", "Low Sugar",
}

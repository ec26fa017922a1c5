package tui

// Color constants for the scrumd TUI theme
const (
	// Base Colors
	ColorBorder = "#3A3F55" // Grey-blue

	// Text Colors
	ColorPrimaryText   = "#E6EAF2" // Primary text (labels, titles)
	ColorSecondaryText = "#B1B8C7" // Secondary text
	ColorDisabledText  = "#6D7383" // Disabled/muted text
	ColorHelpText      = "240"     // Dark grey for help text

	// Accent Colors
	ColorAccentMain   = "#2563EB" // Accent elements, active borders
	ColorAccentBright = "#60A5FA" // Highlights, selected rows

	// State Colors
	ColorError   = "#EF4444" // High priority
	ColorSuccess = "#22C55E" // Done column
	ColorWarning = "#F59E0B" // Medium priority
)

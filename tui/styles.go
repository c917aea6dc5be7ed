package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("25")).
			Foreground(lipgloss.Color("255")).
			Padding(0, 1)

	normalStyle = lipgloss.NewStyle().
			Padding(0, 1)

	groupStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("252")).
			Padding(0, 1)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("110"))

	inboundTag = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33")).
			Bold(true)

	outboundTag = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	accentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("197"))

	// rating badges
	ratingBadStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("197")).
			Background(lipgloss.Color("52")).
			Padding(0, 1)

	ratingGoodStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("111")).
			Background(lipgloss.Color("17")).
			Padding(0, 1)

	ratingExcellentStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("42")).
				Background(lipgloss.Color("22")).
				Padding(0, 1)

	// playback bar
	progressDoneStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("21"))

	progressRestStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240"))

	// Detail view styles
	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("255")).
				Background(lipgloss.Color("236")).
				Padding(0, 1)

	detailLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("242")).
				Width(14)
)

package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const ellipsis = "…"

var (
	normalFg    = lipgloss.AdaptiveColor{Light: "#1a1a1a", Dark: "#dddddd"}
	dimFg       = lipgloss.AdaptiveColor{Light: "#A49FA5", Dark: "#777777"}
	brightFg    = lipgloss.AdaptiveColor{Light: "#4F4F4F", Dark: "#DDDDDD"}
	fuchsia     = lipgloss.Color("#EE6FF8")
	yellowGreen = lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#ECFD65"}
	red         = lipgloss.AdaptiveColor{Light: "#FF4672", Dark: "#ED567A"}
	cream       = lipgloss.AdaptiveColor{Light: "#FFFDF5", Dark: "#FFFDF5"}
	mintGreen   = lipgloss.AdaptiveColor{Light: "#89F0CB", Dark: "#89F0CB"}
	darkGreen   = lipgloss.AdaptiveColor{Light: "#1C8760", Dark: "#1C8760"}
	green       = lipgloss.Color("#04B575")
	amber       = lipgloss.AdaptiveColor{Light: "#B8860B", Dark: "#FFBF00"}

	statusBarNoteFg = lipgloss.AdaptiveColor{Light: "#656565", Dark: "#7D7D7D"}
	statusBarBg     = lipgloss.AdaptiveColor{Light: "#E6E6E6", Dark: "#242424"}

	logoStyle = lipgloss.NewStyle().
			Foreground(cream).
			Background(lipgloss.Color("#5A56E0")).
			Bold(true)

	statusBarNoteStyle = lipgloss.NewStyle().
				Foreground(statusBarNoteFg).
				Background(statusBarBg).
				Render

	statusBarHelpStyle = lipgloss.NewStyle().
				Foreground(statusBarNoteFg).
				Background(lipgloss.AdaptiveColor{Light: "#DCDCDC", Dark: "#323232"}).
				Render

	statusBarMessageStyle = lipgloss.NewStyle().
				Foreground(mintGreen).
				Background(darkGreen).
				Render

	statusBarErrorStyle = lipgloss.NewStyle().
				Foreground(cream).
				Background(red).
				Render

	helpViewStyle = lipgloss.NewStyle().
			Foreground(statusBarNoteFg).
			Background(lipgloss.AdaptiveColor{Light: "#f2f2f2", Dark: "#1B1B1B"}).
			Render

	chipStyle = lipgloss.NewStyle().
			Foreground(dimFg).
			Padding(0, 1)

	activeChipStyle = lipgloss.NewStyle().
			Foreground(cream).
			Background(fuchsia).
			Padding(0, 1)

	cardTitleStyle = lipgloss.NewStyle().
			Foreground(normalFg).
			Bold(true)

	selectedTitleStyle = lipgloss.NewStyle().
				Foreground(fuchsia).
				Bold(true)

	selectedBorderStyle = lipgloss.NewStyle().
				Foreground(fuchsia)

	categoryBadgeStyle = lipgloss.NewStyle().
				Foreground(yellowGreen)

	subtleStyle = lipgloss.NewStyle().
			Foreground(dimFg)

	errorTitleStyle = lipgloss.NewStyle().
			Foreground(cream).
			Background(red).
			Padding(0, 1)

	warningStyle = lipgloss.NewStyle().
			Foreground(amber).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(brightFg).
			Bold(true)

	focusedLabelStyle = lipgloss.NewStyle().
				Foreground(fuchsia).
				Bold(true)

	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(fuchsia).
			Padding(1, 2)

	nowReadingStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("226")).
			Foreground(lipgloss.Color("0")).
			Bold(true)
)

func logoView() string {
	return logoStyle.Render(" LawFlow ")
}

func errorView(err error, fatal bool) string {
	exitMsg := "press any key to "
	if fatal {
		exitMsg += "exit"
	} else {
		exitMsg += "return"
	}
	s := fmt.Sprintf("%s\n\n%v\n\n%s",
		errorTitleStyle.Render("ERROR"),
		err,
		subtleStyle.Render(exitMsg),
	)
	return "\n" + indent(s, 3)
}

// Lightweight version of reflow's indent function.
func indent(s string, n int) string {
	if n <= 0 || s == "" {
		return s
	}
	l := strings.Split(s, "\n")
	b := strings.Builder{}
	i := strings.Repeat(" ", n)
	for _, v := range l {
		fmt.Fprintf(&b, "%s%s\n", i, v)
	}
	return b.String()
}

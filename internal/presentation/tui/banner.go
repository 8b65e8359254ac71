package tui

import (
	"fmt"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the ASCII art banner for zapflow.
func PrintBanner() {
	p := termenv.ColorProfile()
	// Green gradient, matching the messaging surface the flows ship to
	s1 := termenv.String(`                  __ _               `).Foreground(p.Color("#34d399"))
	s2 := termenv.String(`  ______ _ _ __  / _| | _____      __`).Foreground(p.Color("#10b981"))
	s3 := termenv.String(` |_  / _' | '_ \| |_| |/ _ \ \ /\ / /`).Foreground(p.Color("#059669"))
	s4 := termenv.String(`  / / (_| | |_) |  _| | (_) \ V  V / `).Foreground(p.Color("#047857"))
	s5 := termenv.String(` /___\__,_| .__/|_| |_|\___/ \_/\_/  `).Foreground(p.Color("#065f46"))
	s6 := termenv.String(`          |_|                        `).Foreground(p.Color("#064e3b"))

	fmt.Println()
	fmt.Println(s1)
	fmt.Println(s2)
	fmt.Println(s3)
	fmt.Println(s4)
	fmt.Println(s5)
	fmt.Println(s6)
	fmt.Println()
}

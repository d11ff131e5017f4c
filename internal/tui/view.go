package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/nutrisnap/internal/constants"
	"github.com/julianstephens/nutrisnap/internal/notifier"
	"github.com/julianstephens/nutrisnap/internal/router"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case constants.StateForm:
		content = m.form.View()
	case constants.StateFilePicker:
		content = m.viewPicker()
	case constants.StateHelp:
		content = m.viewHelp()
	case constants.StateConfirmDelete, constants.StateConfirmLogout:
		content = m.viewConfirm()
	default:
		content = m.viewContent()
	}

	parts := []string{m.viewHeader()}
	if b := m.viewBanners(); b != "" {
		parts = append(parts, b)
	}
	parts = append(parts, content)
	if m.snap.Authenticated() && router.ChromeFor(m.snap.View).BottomNav {
		parts = append(parts, m.viewTabs())
	}
	parts = append(parts, m.help.View(m))

	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (m Model) viewHeader() string {
	title := headerStyle.Render("NutriSnap · " + router.Title(m.snap.View.ID()))
	var right []string
	if m.snap.Authenticated() {
		u := m.snap.User()
		line := fmt.Sprintf("%s  %d XP", u.Username, u.TotalXP)
		if u.Level != "" {
			line += "  " + u.Level
		}
		right = append(right, mutedStyle.Render(line))
	}
	if m.busy() {
		right = append(right, m.spinner.View())
	}
	if len(right) == 0 {
		return title
	}
	return title + "  " + strings.Join(right, " ")
}

func (m Model) viewBanners() string {
	var out []string
	if n := m.snap.Banner(notifier.KindSuccess); n != nil {
		out = append(out, successBannerStyle.Render("✓ "+n.Text))
	}
	if n := m.snap.Banner(notifier.KindError); n != nil {
		out = append(out, errorBannerStyle.Render("✗ "+n.Text)+mutedStyle.Render("  x: dismiss"))
	}
	return strings.Join(out, "\n")
}

func (m Model) viewTabs() string {
	tabs := router.Tabs(m.snap.User())
	active := router.TabIndex(tabs, m.snap.View)
	var out []string
	for i, t := range tabs {
		label := router.Title(t.ID())
		if i == active {
			out = append(out, activeTabStyle.Render(label))
		} else {
			out = append(out, inactiveTabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, out...)
}

func (m Model) viewContent() string {
	s := m.snap
	switch s.View.ID() {
	case router.Login:
		greeting := "Welcome to NutriSnap."
		if e := s.Drafts.Login.Email; e != "" {
			greeting = "Sign in as " + e
		}
		return greeting + "\n\n" + mutedStyle.Render("enter: sign in  n: create an account")
	case router.Register:
		return "Create your NutriSnap account.\n\n" + mutedStyle.Render("enter: fill in the form  esc: back to sign in")
	case router.DailyLog:
		return lipgloss.JoinVertical(lipgloss.Left, dailyTotals(s), m.meals.View())
	case router.RecipeBook:
		return m.recipes.View()
	case router.MealHistory:
		return m.history.View()
	case router.CameraCapture:
		if m.app.CameraActive() {
			return "📷 Camera is live.\n\n" + mutedStyle.Render("space: capture and analyse  u: pick a file  esc: back")
		}
		return "Starting camera...\n\n" + mutedStyle.Render("u: pick a file instead  esc: back")
	}
	return m.page.View()
}

func (m Model) viewPicker() string {
	var title string
	switch m.pickFor {
	case pickMealPhoto:
		title = "Choose a photo of your meal"
	case pickProfilePhoto:
		title = "Choose a profile photo"
	default:
		title = "Choose a food photo to analyse"
	}
	return headerStyle.Render(title) + "\n" + m.picker.View() + "\n" + mutedStyle.Render("esc: cancel")
}

func (m Model) viewConfirm() string {
	style := warningStyle
	if m.state == constants.StateConfirmDelete {
		style = dangerStyle
	}
	return overlayStyle.Render(style.Render(m.confirm) + "\n\n" + mutedStyle.Render("y: yes  n: no"))
}

func (m Model) viewHelp() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Getting around"))
	b.WriteString("\n\n")
	b.WriteString("tab / shift+tab  switch screens\n")
	b.WriteString("esc              go back\n")
	b.WriteString("r                refresh this screen\n")
	b.WriteString("c / u            snap or upload a meal from the dashboard\n")
	b.WriteString("a / d            add or delete meals in the daily log\n")
	b.WriteString("L                sign out\n")
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("press any key to continue"))
	return overlayStyle.Render(b.String())
}

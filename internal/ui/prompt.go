package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"

	"github.com/mcgeq/mcg/pkg/manager"
)

// Confirm prompts the user for yes/no confirmation.
func Confirm(prompt string, defaultYes bool) (bool, error) {
	label := prompt
	if defaultYes {
		label += " [Y/n]"
	} else {
		label += " [y/N]"
	}

	p := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
		Default:   "",
	}

	if defaultYes {
		p.Default = "y"
	}

	result, err := p.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		if errors.Is(err, promptui.ErrInterrupt) {
			return false, err
		}
		return defaultYes, nil // Return default on error
	}

	result = strings.ToLower(strings.TrimSpace(result))
	if result == "" {
		return defaultYes, nil
	}

	return result == "y" || result == "yes", nil
}

// SelectManager prompts the user to pick one of infos. Installed managers are
// marked.
func SelectManager(infos []manager.Info, prompt string) (manager.Kind, error) {
	if len(infos) == 0 {
		return "", fmt.Errorf("no package managers to select from")
	}

	if len(infos) == 1 {
		return infos[0].Kind, nil
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "▸ {{ .DisplayName | cyan }} {{ .Ecosystem | faint }}{{ if .Available }} {{ \"installed\" | green }}{{ end }}",
		Inactive: "  {{ .DisplayName }} {{ .Ecosystem | faint }}{{ if .Available }} {{ \"installed\" | faint }}{{ end }}",
		Selected: "✓ {{ .DisplayName | cyan }}",
	}

	searcher := func(input string, index int) bool {
		name := strings.ToLower(string(infos[index].Kind))
		return strings.Contains(name, strings.ToLower(input))
	}

	p := promptui.Select{
		Label:     prompt,
		Items:     infos,
		Templates: templates,
		Size:      len(infos),
		Searcher:  searcher,
	}

	index, _, err := p.Run()
	if err != nil {
		return "", err
	}

	return infos[index].Kind, nil
}

// SelectString prompts the user to select one of items.
func SelectString(items []string, prompt string) (string, error) {
	if len(items) == 0 {
		return "", fmt.Errorf("no items to select from")
	}

	if len(items) == 1 {
		return items[0], nil
	}

	p := promptui.Select{
		Label: prompt,
		Items: items,
		Size:  10,
	}

	_, result, err := p.Run()
	if err != nil {
		return "", err
	}

	return result, nil
}

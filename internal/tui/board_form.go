package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/hay-kot/parley/internal/core/chat"
	"github.com/hay-kot/parley/internal/styles"
)

// ErrNoBoards is returned by the picker when there is nothing to pick.
var ErrNoBoards = errors.New("no boards found")

// BoardForm wraps a huh.Form for creating a board.
type BoardForm struct {
	form        *huh.Form
	name        string
	description string
}

// BoardFormResult contains the form submission result.
type BoardFormResult struct {
	Name        string
	Description string
}

// NewBoardForm creates a board form. existingNames rejects duplicate names.
func NewBoardForm(existingNames map[string]bool) *BoardForm {
	f := &BoardForm{}

	f.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Board Name").
				Value(&f.name).
				Validate(func(s string) error {
					if err := chat.ValidateName(s); err != nil {
						return err
					}
					if existingNames[s] {
						return errors.New("board name already exists")
					}
					return nil
				}),
			huh.NewText().
				Title("Description").
				Value(&f.description).
				CharLimit(280),
		),
	).WithTheme(styles.FormTheme())

	return f
}

// Form returns the underlying huh.Form.
func (f *BoardForm) Form() *huh.Form {
	return f.form
}

// Run shows the form standalone and returns the result.
func (f *BoardForm) Run() (BoardFormResult, error) {
	if err := f.form.Run(); err != nil {
		return BoardFormResult{}, err
	}
	return f.Result(), nil
}

// Result returns the entered values.
func (f *BoardForm) Result() BoardFormResult {
	return BoardFormResult{
		Name:        f.name,
		Description: f.description,
	}
}

// BoardPicker wraps a huh.Select over existing boards.
type BoardPicker struct {
	form        *huh.Form
	boards      []chat.Board
	selectedIdx int
}

// NewBoardPicker creates a picker for boards. If preselectedID matches a
// board, that board starts highlighted.
func NewBoardPicker(boards []chat.Board, preselectedID string) *BoardPicker {
	p := &BoardPicker{boards: boards}

	for i, b := range boards {
		if b.ID == preselectedID {
			p.selectedIdx = i
			break
		}
	}

	options := make([]huh.Option[int], len(boards))
	for i, b := range boards {
		options[i] = huh.NewOption(boardOptionLabel(b), i)
	}

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Board").
				Options(options...).
				Value(&p.selectedIdx).
				Filtering(true).
				Height(10),
		),
	).WithTheme(styles.FormTheme())

	return p
}

// Run shows the picker standalone and returns the chosen board.
func (p *BoardPicker) Run() (chat.Board, error) {
	if len(p.boards) == 0 {
		return chat.Board{}, ErrNoBoards
	}
	if err := p.form.Run(); err != nil {
		return chat.Board{}, err
	}
	return p.Selected(), nil
}

// Selected returns the highlighted board.
func (p *BoardPicker) Selected() chat.Board {
	return p.boards[p.selectedIdx]
}

func boardOptionLabel(b chat.Board) string {
	label := b.Icon() + " " + b.Name
	if b.ShowBadge() {
		label += fmt.Sprintf(" (%d)", b.MessagesCount)
	}
	return label
}

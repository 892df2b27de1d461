package keyboard

import (
	"strconv"

	tele "gopkg.in/telebot.v4"
)

// InlineBtn describes a convenience wrapper for inline button properties.
type InlineBtn struct {
	Text   string
	Unique string
	Data   string
}

const defaultCancelButtonText = "❌ إلغاء"

// RemoveKeyboard returns a markup that hides the keyboard.
func RemoveKeyboard() *tele.ReplyMarkup {
	return &tele.ReplyMarkup{RemoveKeyboard: true}
}

// InlineButtonsRows builds an inline keyboard from rows of InlineBtn.
func InlineButtonsRows(rows ...[]InlineBtn) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	inline := make([][]tele.InlineButton, len(rows))
	for i, row := range rows {
		r := make([]tele.InlineButton, len(row))
		for j, btn := range row {
			r[j] = *markup.Data(btn.Text, btn.Unique, btn.Data).Inline()
		}
		inline[i] = r
	}
	markup.InlineKeyboard = inline
	return markup
}

// InlineButtonsNPerRow splits a flat list of buttons into rows with up to n buttons per row.
func InlineButtonsNPerRow(buttons []InlineBtn, n int) *tele.ReplyMarkup {
	if n < 1 {
		n = 1
	}
	var rows [][]InlineBtn
	for i := 0; i < len(buttons); i += n {
		end := min(i+n, len(buttons))
		rows = append(rows, buttons[i:end])
	}
	return InlineButtonsRows(rows...)
}

// PadScopeSep separates a number pad's scope from the pressed number.
const PadScopeSep = ":"

// NumberPad renders buttons 1..n, perRow per row, followed by a cancel row.
// Each number button carries "scope:number" as payload under the pick action
// (just the number when scope is empty).
// n above maxButtons yields only the cancel row; long menus are answered by text.
func NumberPad(n, perRow int, pickAction, scope, cancelAction string) *tele.ReplyMarkup {
	const maxButtons = 30
	var buttons []InlineBtn
	if n <= maxButtons {
		for i := 1; i <= n; i++ {
			s := strconv.Itoa(i)
			data := s
			if scope != "" {
				data = scope + PadScopeSep + s
			}
			buttons = append(buttons, InlineBtn{Text: s, Unique: pickAction, Data: data})
		}
	}
	markup := InlineButtonsNPerRow(buttons, perRow)
	if len(buttons) == 0 {
		markup.InlineKeyboard = nil
	}
	cancel := CancelButton(markup, cancelAction)
	markup.InlineKeyboard = append(markup.InlineKeyboard, []tele.InlineButton{*cancel.Inline()})
	return markup
}

// CancelButton returns a reusable cancel inline button for the provided markup and action.
// Optional arguments override the payload (first value) and label (second value).
func CancelButton(markup *tele.ReplyMarkup, action string, options ...string) tele.Btn {
	payload := "cancel"
	if len(options) > 0 && options[0] != "" {
		payload = options[0]
	}
	text := defaultCancelButtonText
	if len(options) > 1 && options[1] != "" {
		text = options[1]
	}
	return markup.Data(text, action, payload)
}

// SingleCancelMarkup creates an inline keyboard with a single cancel button.
func SingleCancelMarkup(action string, options ...string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	btn := CancelButton(markup, action, options...)
	markup.InlineKeyboard = [][]tele.InlineButton{{*btn.Inline()}}
	return markup
}

package callbacks

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

func TestParseCallbackData(t *testing.T) {
	cases := []struct {
		cb              *tele.Callback
		unique, payload string
	}{
		{nil, "", ""},
		{&tele.Callback{Unique: "pick", Data: "3"}, "pick", "3"},
		{&tele.Callback{Data: "\fpick|12"}, "pick", "12"},
		{&tele.Callback{Data: "\fcancel"}, "cancel", ""},
	}
	for _, tc := range cases {
		u, p := ParseCallbackData(tc.cb)
		if u != tc.unique || p != tc.payload {
			t.Errorf("ParseCallbackData(%+v) = %q, %q", tc.cb, u, p)
		}
	}
}

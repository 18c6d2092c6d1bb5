package display

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMenuViewLines(t *testing.T) {
	labels := []string{"check", "bet", "call", "raise", "fold"}

	t.Run("list marks the cursor", func(t *testing.T) {
		v := MenuView{Labels: labels, Cursor: 2}
		assert.Equal(t, []string{"  check", "  bet", "> call", "  raise", "  fold"}, v.Lines())
	})

	t.Run("amount entry shows amount and balance", func(t *testing.T) {
		v := MenuView{Labels: labels, Cursor: 3, AmountEntry: true, Amount: 40, Balance: 500}
		assert.Equal(t, []string{"raise", "Amount: 40", "Balance: 500"}, v.Lines())
	})

	t.Run("list truncated to screen height", func(t *testing.T) {
		v := MenuView{Labels: append(labels, "allin")}
		assert.Len(t, v.Lines(), MaxMenuItems)
	})
}

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	assert.Equal(t, Screen{}, r.Last())

	r.ShowMessage("Card scanned", "Choose action")
	r.ShowMenu(MenuView{Labels: []string{"fold"}})

	assert.Equal(t, 2, r.Count())
	assert.True(t, r.Last().Menu)
	assert.Equal(t, "Card scanned\nChoose action", r.Screens()[0].Text())
}

func TestScreenEqual(t *testing.T) {
	a := MessageScreen("Wrong card", "Scan again")
	assert.True(t, a.Equal(MessageScreen("Wrong card", "Scan again")))
	assert.False(t, a.Equal(MessageScreen("Wrong card", "")))
	assert.False(t, a.Equal(Screen{Lines: a.Lines, Menu: true}))
}

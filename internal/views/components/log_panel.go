package components

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

const logEntryPrefix = "✅ "

// LogPanel lists the steps applied by the last restoration.
type LogPanel struct {
	container *fyne.Container
	entries   *fyne.Container
}

func NewLogPanel() *LogPanel {
	lp := &LogPanel{entries: container.NewVBox()}
	lp.container = container.NewBorder(
		widget.NewRichTextFromMarkdown("**Processing Log**"),
		nil, nil, nil,
		container.NewVScroll(lp.entries),
	)
	return lp
}

// SetEntries replaces the shown log with one line per entry, in order.
func (lp *LogPanel) SetEntries(entries []string) {
	objects := make([]fyne.CanvasObject, 0, len(entries))
	for _, entry := range entries {
		objects = append(objects, widget.NewLabel(logEntryPrefix+entry))
	}
	lp.entries.Objects = objects
	lp.entries.Refresh()
}

// Lines returns the rendered text of each entry.
func (lp *LogPanel) Lines() []string {
	lines := make([]string, 0, len(lp.entries.Objects))
	for _, obj := range lp.entries.Objects {
		if label, ok := obj.(*widget.Label); ok {
			lines = append(lines, label.Text)
		}
	}
	return lines
}

func (lp *LogPanel) Clear() {
	lp.SetEntries(nil)
}

func (lp *LogPanel) GetContainer() *fyne.Container {
	return lp.container
}

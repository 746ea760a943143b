package main

import (
	"os"

	"github.com/pterm/pterm"
)

// barProgress shows per-row progress on stderr.
type barProgress struct {
	bar *pterm.ProgressbarPrinter
}

func (p *barProgress) Start(title string, total int) {
	if total == 0 {
		return
	}

	bar, err := pterm.DefaultProgressbar.
		WithTitle(title).
		WithTotal(total).
		WithWriter(os.Stderr).
		WithRemoveWhenDone(true).
		Start()
	if err != nil {
		return
	}
	p.bar = bar
}

func (p *barProgress) Increment() {
	if p.bar != nil {
		p.bar.Increment()
	}
}

func (p *barProgress) Stop() {
	if p.bar != nil {
		p.bar.Stop()
		p.bar = nil
	}
}

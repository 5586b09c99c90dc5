package displayer

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"cardiag/internal/obd"
	"cardiag/internal/provider"
)

// PIDs shown on the dashboard page, in display order.
var dashboardPIDs = []byte{
	obd.PIDEngineRPM,
	obd.PIDCoolantTemp,
	obd.PIDVehicleSpeed,
	obd.PIDThrottle,
	obd.PIDIntakeTemp,
	obd.PIDEngineLoad,
}

// Displayer renders the TUI: a live sensor dashboard and a trouble code
// table, with connection status and VIN in the header.
type Displayer struct {
	app      *tview.Application
	tabs     *tview.Pages
	provider provider.Provider
	ctx      context.Context
	cancel   context.CancelFunc

	sensorTexts map[byte]*tview.TextView
	statusText  *tview.TextView
	helpText    *tview.TextView
	dtcTable    *tview.Table
}

func New(p provider.Provider) *Displayer {
	ctx, cancel := context.WithCancel(context.Background())
	return &Displayer{
		app:         tview.NewApplication(),
		tabs:        tview.NewPages(),
		provider:    p,
		ctx:         ctx,
		cancel:      cancel,
		sensorTexts: make(map[byte]*tview.TextView),
	}
}

func (d *Displayer) Run() error {
	if err := d.provider.Start(d.ctx); err != nil {
		return err
	}

	dashboard := d.buildDashboard()
	d.dtcTable = d.buildDTCTable()

	title := tview.NewTextView().SetTextAlign(tview.AlignCenter).SetText("cardiag - OBD-II diagnostics")
	d.statusText = tview.NewTextView().SetTextAlign(tview.AlignCenter).SetDynamicColors(true)
	d.helpText = tview.NewTextView().SetTextAlign(tview.AlignCenter).SetText("[1 - Dashboard] [2 - Trouble Codes] [q - Quit]")

	header := tview.NewFlex().SetDirection(tview.FlexRow)
	header.AddItem(title, 1, 0, false)
	header.AddItem(d.statusText, 1, 0, false)
	header.AddItem(d.helpText, 1, 0, false)

	d.tabs.AddPage("dashboard", dashboard, true, true)
	d.tabs.AddPage("dtc", d.dtcTable, true, false)

	main := tview.NewFlex().SetDirection(tview.FlexRow)
	main.AddItem(header, 3, 0, false)
	main.AddItem(d.tabs, 0, 1, true)

	d.app.SetRoot(main, true)
	d.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Rune() {
		case 'q', 'Q':
			d.Shutdown()
			return nil
		case '1':
			d.tabs.SwitchToPage("dashboard")
			return nil
		case '2':
			d.tabs.SwitchToPage("dtc")
			return nil
		}
		return event
	})

	d.updateValues()
	d.app.SetBeforeDrawFunc(func(screen tcell.Screen) bool {
		d.updateValues()
		return false
	})

	go d.refreshLoop()

	return d.app.Run()
}

func (d *Displayer) Shutdown() {
	d.cancel()
	d.provider.Stop()
	d.app.Stop()
}

func (d *Displayer) buildDashboard() *tview.Flex {
	flex := tview.NewFlex().SetDirection(tview.FlexRow)
	for _, pid := range dashboardPIDs {
		text := tview.NewTextView().SetDynamicColors(true)
		d.sensorTexts[pid] = text
		flex.AddItem(text, 1, 0, false)
	}
	return flex
}

func (d *Displayer) buildDTCTable() *tview.Table {
	tbl := tview.NewTable().SetBorders(true)
	tbl.SetCell(0, 0, tview.NewTableCell("Code").SetSelectable(false).SetAlign(tview.AlignCenter))
	tbl.SetCell(0, 1, tview.NewTableCell("Category").SetSelectable(false).SetAlign(tview.AlignCenter))
	return tbl
}

func (d *Displayer) updateValues() {
	for _, pid := range dashboardPIDs {
		text := d.sensorTexts[pid]
		name, _ := obd.SensorName(pid)

		val, err := d.provider.GetSensor(pid)
		if err != nil {
			text.SetText(fmt.Sprintf("%s: [gray]--[white]", name))
			continue
		}
		text.SetText(fmt.Sprintf("%s: %.1f %s", val.Name, val.Value, val.Unit))
	}

	status := "[red]disconnected[white]"
	if d.provider.IsConnected() {
		status = "[green]connected[white]"
	}
	if vin, err := d.provider.GetVIN(); err == nil {
		status += fmt.Sprintf("  VIN: %s", vin)
	}
	d.statusText.SetText(fmt.Sprintf("Status: %s", status))
}

func (d *Displayer) updateDTCTable() {
	list, err := d.provider.GetDTCs()
	if err != nil {
		return
	}
	for r := d.dtcTable.GetRowCount() - 1; r >= 1; r-- {
		d.dtcTable.RemoveRow(r)
	}
	for i := 0; i < list.Count; i++ {
		tc := list.Codes[i]
		d.dtcTable.SetCell(i+1, 0, tview.NewTableCell(tc.String()))
		d.dtcTable.SetCell(i+1, 1, tview.NewTableCell(tc.Category.String()))
	}
	if list.Truncated {
		row := list.Count + 1
		d.dtcTable.SetCell(row, 0, tview.NewTableCell("..."))
		d.dtcTable.SetCell(row, 1, tview.NewTableCell("more codes than shown"))
	}
}

func (d *Displayer) refreshLoop() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-d.ctx.Done():
			return
		case <-ticker.C:
			d.app.QueueUpdateDraw(func() {
				d.updateDTCTable()
			})
		}
	}
}

package root

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"cardiag/internal/displayer"
	"cardiag/internal/obd"
	"cardiag/internal/provider"
	"cardiag/pkg/log"
)

// Run is the entry point of the root command.
func Run(cmd *cobra.Command, args []string) {
	defer log.Sync()

	var p provider.Provider
	if viper.GetBool("mock") {
		log.Info("using mock provider")
		p = provider.NewMock()
	} else {
		log.Info("using serial provider", zap.String("port", viper.GetString("port")), zap.Int("baud", viper.GetInt("baud")))
		p = provider.New(viper.GetString("port"), viper.GetInt("baud"))
	}

	if viper.GetBool("no-tui") {
		printSummary(p)
		return
	}

	d := displayer.New(p)
	if err := d.Run(); err != nil {
		log.Fatal("displayer stopped", zap.Error(err))
	}
}

// printSummary connects, waits for the first poll cycle, and prints a
// one-shot report to stdout.
func printSummary(p provider.Provider) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := p.Start(ctx); err != nil {
		color.Red("failed to start provider: %v", err)
		return
	}
	defer p.Stop()

	// Give the background session time to connect and poll once.
	deadline := time.Now().Add(15 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := p.GetRPM(); err == nil {
			break
		}
		time.Sleep(500 * time.Millisecond)
	}

	bold := color.New(color.Bold)

	bold.Println("Vehicle")
	if vin, err := p.GetVIN(); err == nil {
		fmt.Printf("  VIN: %s\n", vin)
	} else {
		fmt.Println("  VIN: unavailable")
	}

	bold.Println("Sensors")
	for _, pid := range obd.SupportedPIDs() {
		val, err := p.GetSensor(pid)
		if err != nil {
			continue
		}
		fmt.Printf("  %-28s %8.1f %s\n", val.Name, val.Value, val.Unit)
	}

	bold.Println("Trouble codes")
	list, err := p.GetDTCs()
	if err != nil {
		fmt.Println("  unavailable")
		return
	}
	if list.Count == 0 {
		color.Green("  none stored")
		return
	}
	for i := 0; i < list.Count; i++ {
		tc := list.Codes[i]
		color.Red("  %s (%s)", tc.String(), tc.Category.String())
	}
	if list.Truncated {
		color.Yellow("  list truncated, more codes are stored")
	}
}

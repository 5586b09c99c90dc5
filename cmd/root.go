package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"cardiag/internal/cmd/root"
	"cardiag/pkg/log"
)

var rootCmd = &cobra.Command{
	Use:   "cardiag",
	Short: "OBD-II diagnostics over an ELM327 adapter",
	Run:   root.Run,
}

func init() {
	cobra.OnInitialize(initLogger)

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().Bool("no-tui", false, "Print a one-shot summary instead of the TUI")
	rootCmd.PersistentFlags().Bool("mock", false, "Use the mock OBD provider")
	rootCmd.PersistentFlags().String("port", "/dev/rfcomm0", "Serial device of the adapter")
	rootCmd.PersistentFlags().Int("baud", 38400, "Baud rate for the serial connection")
	rootCmd.PersistentFlags().String("log-file", "cardiag.log", "Log file path")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("no-tui", rootCmd.PersistentFlags().Lookup("no-tui"))
	viper.BindPFlag("mock", rootCmd.PersistentFlags().Lookup("mock"))
	viper.BindPFlag("port", rootCmd.PersistentFlags().Lookup("port"))
	viper.BindPFlag("baud", rootCmd.PersistentFlags().Lookup("baud"))
	viper.BindPFlag("log-file", rootCmd.PersistentFlags().Lookup("log-file"))

	viper.SetDefault("debug", false)
	viper.SetDefault("no-tui", false)
	viper.SetDefault("mock", false)
	viper.SetDefault("port", "/dev/rfcomm0")
	viper.SetDefault("baud", 38400)
	viper.SetDefault("log-file", "cardiag.log")
}

func initLogger() {
	log.InitLogger(viper.GetBool("debug"), viper.GetString("log-file"))
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

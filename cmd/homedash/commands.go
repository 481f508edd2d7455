package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/homedash/internal/backend"
	"github.com/muurk/homedash/internal/control"
	"github.com/muurk/homedash/internal/status"
	"github.com/muurk/homedash/internal/ui"
)

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(alarmCmd)
	rootCmd.AddCommand(armCmd)
	rootCmd.AddCommand(disarmCmd)
	rootCmd.AddCommand(pinCmd)
	rootCmd.AddCommand(keyCmd)
	rootCmd.AddCommand(timerCmd)
	rootCmd.AddCommand(rgbCmd)
	rootCmd.AddCommand(scenarioCmd)

	alarmCmd.AddCommand(alarmOnCmd, alarmOffCmd)
	timerCmd.AddCommand(timerSetCmd, timerConfigCmd, timerAddCmd)
	rgbCmd.AddCommand(rgbOnCmd, rgbOffCmd, rgbSetCmd)
	scenarioCmd.AddCommand(scenarioEntryCmd, scenarioExitCmd)

	statusCmd.Flags().Bool("raw", false, "Print the raw JSON body instead of the report")
}

func newClient() *backend.Client {
	return backend.NewClient(cfg.BackendURL, cfg.RequestTimeout)
}

// newDispatcher creates a dispatcher for one-shot commands. Nothing polls,
// so there is no refresh to trigger.
func newDispatcher() *control.Dispatcher {
	return control.NewDispatcher(newClient(), nil, cfg.RequestTimeout)
}

// runControl sends one command and reports the outcome in a result box
func runControl(cmd *cobra.Command, title string, send func(ctx context.Context, d *control.Dispatcher) error, details ...ui.Field) error {
	p := ui.NewPrinter(cmd.OutOrStdout())

	start := time.Now()
	if err := send(cmd.Context(), newDispatcher()); err != nil {
		p.PrintError(title, err, ui.Troubleshooting(err, cfg.BackendURL))
		return reportedError{err}
	}

	details = append(details,
		ui.Field{Key: "Backend", Value: cfg.BackendURL},
		ui.Field{Key: "Duration", Value: time.Since(start).Round(time.Millisecond).String()},
	)
	p.PrintSuccess(title, details...)
	return nil
}

// statusCmd prints one status snapshot
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current controller status",
	Long: `Fetch /status once and print the system state, every sensor reading and
the event log, newest event first.`,
	Example: `  # Human-readable report
  homedash status

  # Raw JSON for scripting
  homedash status --raw | jq .sensors`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	p := ui.NewPrinter(cmd.OutOrStdout())

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.RequestTimeout)
	defer cancel()

	body, err := newClient().FetchStatus(ctx)
	var snap *status.Snapshot
	if err == nil {
		snap, err = status.DecodeSnapshot(body, time.Now())
	}
	if err != nil {
		p.PrintError("Cannot load backend status", err, ui.Troubleshooting(err, cfg.BackendURL))
		return reportedError{err}
	}

	if raw, _ := cmd.Flags().GetBool("raw"); raw {
		p.Println(strings.TrimSpace(string(snap.Raw())))
		return nil
	}

	p.Println(ui.RenderStatus(snap, "", time.Now(), p.Width()))
	return nil
}

var alarmCmd = &cobra.Command{
	Use:   "alarm",
	Short: "Switch the alarm on or off",
}

var alarmOnCmd = &cobra.Command{
	Use:   "on",
	Short: "Raise the alarm",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runControl(cmd, "Alarm on", func(ctx context.Context, d *control.Dispatcher) error {
			return d.AlarmOn(ctx)
		})
	},
}

var alarmOffCmd = &cobra.Command{
	Use:   "off",
	Short: "Silence the alarm",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runControl(cmd, "Alarm off", func(ctx context.Context, d *control.Dispatcher) error {
			return d.AlarmOff(ctx)
		})
	},
}

var armCmd = &cobra.Command{
	Use:   "arm",
	Short: "Arm the security system",
	Long: `Arm the security system. The controller reports arming_pending until the
arming delay has passed, then system_armed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runControl(cmd, "System armed", func(ctx context.Context, d *control.Dispatcher) error {
			return d.ArmSystem(ctx)
		})
	},
}

var disarmCmd = &cobra.Command{
	Use:   "disarm",
	Short: "Disarm the security system",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runControl(cmd, "System disarmed", func(ctx context.Context, d *control.Dispatcher) error {
			return d.DisarmSystem(ctx)
		})
	},
}

var pinCmd = &cobra.Command{
	Use:   "pin <code>",
	Short: "Enter a PIN on the door keypad",
	Long: `Send a PIN to the door membrane switch (DMS) one key at a time, in order.

The first rejected key aborts the submission; remaining keys are not sent.
Valid keys are 0-9, * and #, up to 8 of them.`,
	Example: `  homedash pin 1234
  homedash pin '1234#'`,
	Args: cobra.ExactArgs(1),
	RunE: runPin,
}

func runPin(cmd *cobra.Command, args []string) error {
	p := ui.NewPrinter(cmd.OutOrStdout())

	code, err := control.ValidatePin(args[0])
	if err != nil {
		return err
	}

	entry := control.NewPinEntry(newDispatcher())
	entry.SetInput(code)

	if err := entry.Submit(cmd.Context()); err != nil {
		p.PrintError("PIN aborted", err, append([]string{
			fmt.Sprintf("%d of %d keys were accepted before key %d failed", entry.Sent(), len(code), entry.Index()+1),
		}, ui.Troubleshooting(err, cfg.BackendURL)...))
		return reportedError{err}
	}

	p.PrintSuccess("PIN sent",
		ui.Field{Key: "Keys", Value: strconv.Itoa(entry.Sent())},
		ui.Field{Key: "Backend", Value: cfg.BackendURL})
	return nil
}

var keyCmd = &cobra.Command{
	Use:   "key <k>",
	Short: "Press a single keypad key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		k := args[0]
		if _, err := control.ValidatePin(k); err != nil || len(k) != 1 {
			return fmt.Errorf("invalid key %q: want one of 0-9, * or #", k)
		}
		return runControl(cmd, "Key "+k+" pressed", func(ctx context.Context, d *control.Dispatcher) error {
			return d.SendKey(ctx, k)
		})
	},
}

var timerCmd = &cobra.Command{
	Use:   "timer",
	Short: "Control the kitchen timer (4SD)",
}

var timerSetCmd = &cobra.Command{
	Use:   "set <seconds>",
	Short: "Start the timer at the given number of seconds",
	Long: `Start the kitchen timer. Non-numeric input is sent as 0; fractional input
is truncated.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		seconds := control.CoerceInt(args[0])
		return runControl(cmd, "Timer set", func(ctx context.Context, d *control.Dispatcher) error {
			return d.SetTimer(ctx, args[0])
		}, ui.Field{Key: "Timer", Value: status.FormatSeconds(seconds)})
	},
}

var timerConfigCmd = &cobra.Command{
	Use:   "config <seconds>",
	Short: "Set how many seconds the timer button adds",
	Long:  `Set how many seconds one press of the timer button (BTN) adds. Zero or invalid input is sent as 1.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runControl(cmd, "Timer button configured", func(ctx context.Context, d *control.Dispatcher) error {
			return d.SetTimerAddN(ctx, args[0])
		})
	},
}

var timerAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Press the timer button",
	Long:  `Press the timer button: adds the configured seconds, or stops the blinking display once the timer has expired.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runControl(cmd, "Timer button pressed", func(ctx context.Context, d *control.Dispatcher) error {
			return d.TimerAdd(ctx)
		})
	},
}

var rgbCmd = &cobra.Command{
	Use:   "rgb",
	Short: "Control the RGB light (BRGB)",
}

var rgbOnCmd = &cobra.Command{
	Use:   "on",
	Short: "Switch the RGB light on",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runControl(cmd, "Light on", func(ctx context.Context, d *control.Dispatcher) error {
			return control.NewColorDraft(d).Toggle(ctx, true)
		})
	},
}

var rgbOffCmd = &cobra.Command{
	Use:   "off",
	Short: "Switch the RGB light off",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runControl(cmd, "Light off", func(ctx context.Context, d *control.Dispatcher) error {
			return control.NewColorDraft(d).Toggle(ctx, false)
		})
	},
}

var rgbSetCmd = &cobra.Command{
	Use:   "set <r> <g> <b>",
	Short: "Set the RGB light colour",
	Long: `Set the RGB light colour. The colour is sent as given; the controller
clamps each channel to 0-255. This does not switch the light on.`,
	Example: `  homedash rgb set 255 128 0`,
	Args:    cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runControl(cmd, "Colour applied", func(ctx context.Context, d *control.Dispatcher) error {
			draft := control.NewColorDraft(d)
			for i, ch := range []control.Channel{control.ChannelR, control.ChannelG, control.ChannelB} {
				draft.SetChannel(ch, args[i])
			}
			return draft.Apply(ctx)
		}, ui.Field{Key: "Colour", Value: fmt.Sprintf("rgb(%s)", strings.Join(args, ", "))})
	},
}

var scenarioCmd = &cobra.Command{
	Use:   "scenario",
	Short: "Run a scripted door scenario on pi1",
	Long: `Replay a scripted sequence of door sensor readings on pi1. The controller
infers a person entering or leaving from the ultrasonic distance trend.`,
}

var scenarioEntryCmd = &cobra.Command{
	Use:   "entry",
	Short: "Simulate a person entering",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runControl(cmd, "Entry scenario started", func(ctx context.Context, d *control.Dispatcher) error {
			return d.ScenarioPi1Entry(ctx)
		})
	},
}

var scenarioExitCmd = &cobra.Command{
	Use:   "exit",
	Short: "Simulate a person leaving",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runControl(cmd, "Exit scenario started", func(ctx context.Context, d *control.Dispatcher) error {
			return d.ScenarioPi1Exit(ctx)
		})
	},
}

package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/psantana5/timeprofile/internal/procinfo"
	"github.com/psantana5/timeprofile/pkg/models"
	"github.com/psantana5/timeprofile/pkg/sink"
)

var (
	runID            string
	runIgnoreTimeout bool
	runVerbose       bool
)

var runCmd = &cobra.Command{
	Use:   "run [flags] -- <command> [args...]",
	Short: "Run a command and record its elapsed time as one row",
	Long: `Run spawns a command in its own process group, measures its wall-clock
time, and appends one row to the shared result file.

The command always survives the tool: measurement or write failures never
kill the workload, and a non-zero exit is recorded as a broken row rather
than suppressed.

Example:
  timeprofile run -- sleep 2
  timeprofile run --id nightly-backup -- ./backup.sh --full
  timeprofile run --result /var/log/timings -- ffmpeg -i in.mp4 out.mp4`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWorkload,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runID, "id", "", "row identifier (default: command name)")
	runCmd.Flags().BoolVar(&runIgnoreTimeout, "ignore-timeout", true, "drop the row silently when the result lock times out")
	runCmd.Flags().BoolVar(&runVerbose, "verbose", false, "print the recorded row")
}

func runWorkload(cmd *cobra.Command, args []string) error {
	id := runID
	if id == "" {
		id = filepath.Base(args[0])
	}

	workload := exec.Command(args[0], args[1:]...)

	// Own process group so the workload is independent of the tool
	workload.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
		Pgid:    0,
	}
	workload.Stdin = os.Stdin
	workload.Stdout = os.Stdout
	workload.Stderr = os.Stderr

	start := time.Now()
	if err := workload.Start(); err != nil {
		return fmt.Errorf("failed to start workload: %w", err)
	}

	pid := workload.Process.Pid
	// Resolve the name while the process is alive; after Wait it may
	// be unresolvable
	name := procinfo.NameFor(pid)

	waitErr := workload.Wait()
	elapsed := time.Since(start)

	exitCode := 0
	if waitErr != nil {
		if exitErr, ok := waitErr.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			return fmt.Errorf("failed to wait for workload: %w", waitErr)
		}
	}

	row := models.Row{
		ID:                id,
		Seconds:           elapsed.Seconds(),
		PID:               pid,
		PPID:              os.Getpid(),
		ProcessName:       name,
		ParentProcessName: procinfo.NameFor(os.Getpid()),
		Broken:            exitCode != 0,
	}
	if exitCode != 0 {
		row.ErrorType = "exit"
		row.ErrorValue = fmt.Sprintf("exit status %d", exitCode)
	}

	s := sink.NewCSVSink(GetResultPath(), lockTimeout)
	if err := s.WriteRow(row); err != nil {
		if sink.IsLockTimeout(err) && runIgnoreTimeout {
			fmt.Fprintf(os.Stderr, "timeprofile: row dropped, %v\n", err)
		} else {
			// Report the failure but the workload already ran; its
			// exit status still wins below
			fmt.Fprintf(os.Stderr, "timeprofile: failed to record row: %v\n", err)
		}
	}

	if runVerbose {
		fmt.Printf("recorded %s: %.5f seconds (pid %d, exit %d)\n", id, row.Seconds, pid, exitCode)
	}

	if exitCode != 0 {
		return fmt.Errorf("workload exited with status %d", exitCode)
	}
	return nil
}

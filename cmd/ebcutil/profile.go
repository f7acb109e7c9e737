package main

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"

	"github.com/felixge/fgprof"
	"github.com/spf13/cobra"
)

// profileFlags selects the profiles recorded around a command.
type profileFlags struct {
	cpuProfile string
	fgProfile  string
	memProfile string
	traceFile  string

	stops []func() error
}

func (p *profileFlags) register(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&p.cpuProfile, "cpuprofile", "", "write CPU profile to file")
	flags.StringVar(&p.fgProfile, "fgprofile", "", "write fgprof (wall clock) profile to file")
	flags.StringVar(&p.memProfile, "memprofile", "", "write heap profile to file on exit")
	flags.StringVar(&p.traceFile, "trace", "", "write execution trace to file")
	for _, name := range []string{"cpuprofile", "fgprofile", "memprofile", "trace"} {
		_ = flags.MarkHidden(name) //nolint:errcheck // flag registered above
	}
}

// start begins every requested profile. On error the profiles already
// started are stopped.
func (p *profileFlags) start() error {
	if p.fgProfile != "" {
		f, err := os.Create(p.fgProfile)
		if err != nil {
			return p.abort(err)
		}
		stopFG := fgprof.Start(f, fgprof.FormatPprof)
		p.stops = append(p.stops, func() error {
			return errors.Join(stopFG(), f.Close())
		})
	}

	if p.cpuProfile != "" {
		f, err := os.Create(p.cpuProfile)
		if err != nil {
			return p.abort(err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			f.Close()
			return p.abort(err)
		}
		p.stops = append(p.stops, func() error {
			pprof.StopCPUProfile()
			return f.Close()
		})
	}

	if p.traceFile != "" {
		f, err := os.Create(p.traceFile)
		if err != nil {
			return p.abort(err)
		}
		if err := trace.Start(f); err != nil {
			f.Close()
			return p.abort(err)
		}
		p.stops = append(p.stops, func() error {
			trace.Stop()
			return f.Close()
		})
	}
	return nil
}

// wrap makes cmd stop the profiles when its RunE returns, whether or not it
// failed. Cobra skips post-run hooks after an error.
func (p *profileFlags) wrap(cmd *cobra.Command) {
	run := cmd.RunE
	if run == nil {
		return
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) (err error) {
		defer func() {
			err = errors.Join(err, p.stop())
		}()
		return run(cmd, args)
	}
}

// stop ends the running profiles in reverse order and writes the heap
// profile, if requested.
func (p *profileFlags) stop() error {
	var errs []error
	for i := len(p.stops) - 1; i >= 0; i-- {
		errs = append(errs, p.stops[i]())
	}
	p.stops = nil

	if p.memProfile != "" {
		runtime.GC()
		errs = append(errs, writeHeapProfile(p.memProfile))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("profiling: %w", err)
	}
	return nil
}

func (p *profileFlags) abort(err error) error {
	p.memProfile = ""
	return errors.Join(fmt.Errorf("profiling: %w", err), p.stop())
}

func writeHeapProfile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := pprof.WriteHeapProfile(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

package portscan

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/cybozu-go/port-dashboard/internal/common"
	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"
)

// Computer runs the listers and builds the port table.
type Computer struct {
	connections Lister
	processes   Lister
	logger      logr.Logger
}

func NewComputer(connections, processes Lister, logger logr.Logger) *Computer {
	return &Computer{
		connections: connections,
		processes:   processes,
		logger:      logger,
	}
}

// ComputePortTable returns the current port table.
// A failing lister is treated as having listed nothing, so the returned rows
// are always complete; the returned error then wraps one *ListerError per
// failed lister.
func (c *Computer) ComputePortTable(ctx context.Context) ([]common.PortRow, error) {
	startTime := time.Now()
	defer func() {
		duration := time.Since(startTime)
		metricsComputeDurationSecondsHistogram.Observe(duration.Seconds())
	}()
	metricsComputationsTotal.Inc()

	var connOut, procOut string
	var connErr, procErr error

	var g errgroup.Group
	g.Go(func() error {
		connOut, connErr = c.list(ctx, c.connections)
		return nil
	})
	g.Go(func() error {
		procOut, procErr = c.list(ctx, c.processes)
		return nil
	})
	g.Wait() //nolint:errcheck

	conns := ConnectionMap{}
	if connErr == nil {
		conns = ParseConnections(connOut)
	}
	procs := ProcessMap{}
	if procErr == nil {
		procs = ParseProcesses(procOut)
	}
	if connErr != nil {
		metricsOccupiedPorts.Set(math.NaN())
	} else {
		metricsOccupiedPorts.Set(float64(len(conns)))
	}

	rows := BuildTable(conns, procs)
	c.logger.V(1).Info("computed port table", "occupied", len(conns), "processes", len(procs), "rows", len(rows))
	return rows, errors.Join(connErr, procErr)
}

func (c *Computer) list(ctx context.Context, l Lister) (string, error) {
	out, err := l.List(ctx)
	if err != nil {
		c.logger.Error(err, "failed to run lister", "lister", l.Name())
		metricsListerErrorsTotal.WithLabelValues(l.Name()).Inc()
		return "", &ListerError{Lister: l.Name(), Err: err}
	}
	return out, nil
}

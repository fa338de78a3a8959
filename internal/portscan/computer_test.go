package portscan

import (
	"context"
	"errors"
	"math"
	"os"

	"github.com/cybozu-go/port-dashboard/internal/common"
	"github.com/go-logr/logr"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fakeLister struct {
	name   string
	output string
	err    error
}

func (l *fakeLister) Name() string {
	return l.name
}

func (l *fakeLister) List(context.Context) (string, error) {
	return l.output, l.err
}

func readTestdata(name string) string {
	data, err := os.ReadFile("testdata/" + name)
	ExpectWithOffset(1, err).NotTo(HaveOccurred())
	return string(data)
}

var _ = Describe("Computer", func() {
	var connections, processes *fakeLister

	BeforeEach(func() {
		connections = &fakeLister{name: ConnectionsListerName, output: readTestdata("netstat.txt")}
		processes = &fakeLister{name: ProcessesListerName, output: readTestdata("tasklist.txt")}
	})

	It("should compute the port table from both listings", func() {
		c := NewComputer(connections, processes, logr.Discard())
		before := testutil.ToFloat64(metricsComputationsTotal)

		rows, err := c.ComputePortTable(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(common.SystemPortMax + 1 + 3))

		r, _ := findRow(rows, 8080)
		Expect(r).To(Equal(common.PortRow{Port: 8080, SystemPort: false, Status: common.StatusOccupied, Software: "myapp.exe"}))
		r, _ = findRow(rows, 445)
		Expect(r).To(Equal(common.PortRow{Port: 445, SystemPort: true, Status: common.StatusOccupied, Software: "System"}))
		r, _ = findRow(rows, 80)
		Expect(r).To(Equal(common.PortRow{Port: 80, SystemPort: true, Status: common.StatusFree, Software: "-"}))

		Expect(testutil.ToFloat64(metricsComputationsTotal)).To(Equal(before + 1))
		Expect(testutil.ToFloat64(metricsOccupiedPorts)).To(Equal(6.0))
	})

	It("should report unknown software when the process lister fails", func() {
		processes.output = ""
		processes.err = errors.New("tasklist: executable file not found")
		c := NewComputer(connections, processes, logr.Discard())
		before := testutil.ToFloat64(metricsListerErrorsTotal.WithLabelValues(ProcessesListerName))

		rows, err := c.ComputePortTable(context.Background())
		Expect(err).To(HaveOccurred())
		var le *ListerError
		Expect(errors.As(err, &le)).To(BeTrue())
		Expect(le.Lister).To(Equal(ProcessesListerName))
		Expect(FailedListers(err)).To(Equal([]string{ProcessesListerName}))

		r, _ := findRow(rows, 8080)
		Expect(r.Status).To(Equal(common.StatusOccupied))
		Expect(r.Software).To(Equal(common.SoftwareUnknown))
		Expect(testutil.ToFloat64(metricsListerErrorsTotal.WithLabelValues(ProcessesListerName))).To(Equal(before + 1))
	})

	It("should report all system ports free when the connection lister fails", func() {
		connections.err = ErrEmptyOutput
		c := NewComputer(connections, processes, logr.Discard())

		rows, err := c.ComputePortTable(context.Background())
		Expect(err).To(MatchError(ErrEmptyOutput))
		Expect(FailedListers(err)).To(Equal([]string{ConnectionsListerName}))
		Expect(rows).To(HaveLen(common.SystemPortMax + 1))
		for _, r := range rows {
			Expect(r.Status).To(Equal(common.StatusFree))
		}
		Expect(math.IsNaN(testutil.ToFloat64(metricsOccupiedPorts))).To(BeTrue())
	})

	It("should report both failures", func() {
		connections.err = errors.New("netstat failed")
		processes.err = errors.New("tasklist failed")
		c := NewComputer(connections, processes, logr.Discard())

		rows, err := c.ComputePortTable(context.Background())
		Expect(err).To(HaveOccurred())
		Expect(FailedListers(err)).To(ConsistOf(ConnectionsListerName, ProcessesListerName))
		Expect(rows).To(HaveLen(common.SystemPortMax + 1))
	})

	It("should yield 1025 free rows for listings without data", func() {
		connections.output = "\nActive Connections\n\n  Proto  Local Address  Foreign Address  State  PID\n"
		processes.output = "\nImage Name PID\n=== ===\n"
		c := NewComputer(connections, processes, logr.Discard())

		rows, err := c.ComputePortTable(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(1025))
		for _, r := range rows {
			Expect(r.Status).To(Equal(common.StatusFree))
			Expect(r.Software).To(Equal("-"))
		}
	})
})

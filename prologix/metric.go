package prologix

import (
	"sync/atomic"
)

// Metrics contains atomic counters for a Controller.
// Metrics can be used as the value of a prometheus CounterFunc or GaugeFunc.
type Metrics struct {
	// WriteCount indicates the number of Write transactions attempted.
	WriteCount atomic.Uint64
	// QueryCount indicates the number of Query transactions attempted.
	QueryCount atomic.Uint64
	// ControllerCommandCount indicates the number of meta-commands emitted, including address switches.
	ControllerCommandCount atomic.Uint64
	// FaultCount indicates the number of transport faults and rejected transactions.
	FaultCount atomic.Uint64
	// EmptyResponseCount indicates the number of queries that received no bytes.
	EmptyResponseCount atomic.Uint64
	// BytesSent indicates the number of bytes written to the serial port.
	BytesSent atomic.Uint64
	// BytesReceived indicates the number of bytes read from the serial port.
	BytesReceived atomic.Uint64
	// OpenCount indicates the number of times the serial port was opened.
	OpenCount atomic.Uint64
}

func (m *Metrics) incWriteCount() {
	m.WriteCount.Add(1)
}

func (m *Metrics) incQueryCount() {
	m.QueryCount.Add(1)
}

func (m *Metrics) incControllerCommandCount() {
	m.ControllerCommandCount.Add(1)
}

func (m *Metrics) incFaultCount() {
	m.FaultCount.Add(1)
}

func (m *Metrics) incEmptyResponseCount() {
	m.EmptyResponseCount.Add(1)
}

func (m *Metrics) incOpenCount() {
	m.OpenCount.Add(1)
}

func (m *Metrics) addBytesSent(n int) {
	m.BytesSent.Add(uint64(n))
}

func (m *Metrics) addBytesReceived(n int) {
	m.BytesReceived.Add(uint64(n))
}

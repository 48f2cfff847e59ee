package lib3flag

import (
	"fmt"
	"io"
	"strings"
)

// GraphAdder is a sink that dedups graphs as they arrive (e.g. a catalog).
type GraphAdder interface {
	TryAddGraph(X *Graph) bool
	Close() error
}

// GraphStream is a channel pipeline of graphs.  Stages run as goroutines and
// pass ownership of each graph downstream.
type GraphStream struct {
	Outlet chan *Graph
}

func NewGraphStream() *GraphStream {
	return &GraphStream{
		Outlet: make(chan *Graph, 1),
	}
}

// StreamGraphs feeds a generated graph list into a new stream.
func StreamGraphs(graphs []*Graph) *GraphStream {
	stream := NewGraphStream()
	go func() {
		for _, X := range graphs {
			stream.Outlet <- X
		}
		stream.Close()
	}()
	return stream
}

func (stream *GraphStream) Close() {
	if stream.Outlet != nil {
		close(stream.Outlet)
	}
}

// PullAll drains the stream into a slice.
func (stream *GraphStream) PullAll() []*Graph {
	var all []*Graph
	for X := range stream.Outlet {
		all = append(all, X)
	}
	return all
}

// PrintOpts specifies what is printed per graph.
type PrintOpts struct {
	Label   string // prefix label
	Degrees bool   // if set, the degree sequence is printed
	Density bool   // if set, the edge density is printed
}

// Print writes each passing graph as one CSV-ish line and forwards it.
func (stream *GraphStream) Print(out io.Writer, opts PrintOpts) *GraphStream {
	next := NewGraphStream()

	go func() {
		b := strings.Builder{}
		b.Grow(128)

		count := 0
		for X := range stream.Outlet {
			b.Reset()
			if len(opts.Label) > 0 {
				b.WriteString(opts.Label)
				b.WriteByte(',')
			}
			count++
			fmt.Fprintf(&b, "%06d,%s", count, X.String())
			if opts.Degrees {
				fmt.Fprintf(&b, ",%v", X.Degrees())
			}
			if opts.Density {
				fmt.Fprintf(&b, ",%s", X.EdgeDensity().RatString())
			}
			b.WriteByte('\n')
			io.WriteString(out, b.String())
			next.Outlet <- X
		}
		next.Close()
	}()

	return next
}

// AddTo pushes each graph into the target sink, forwarding only those the
// sink accepted (dedup happens in the sink).
func (stream *GraphStream) AddTo(target GraphAdder, autoClose bool) *GraphStream {
	next := NewGraphStream()

	go func() {
		for X := range stream.Outlet {
			if target.TryAddGraph(X) {
				next.Outlet <- X
			}
		}
		if autoClose {
			target.Close()
		}
		next.Close()
	}()

	return next
}

// SelectOrder forwards only graphs whose order lies in [min, max].
func (stream *GraphStream) SelectOrder(min, max int) *GraphStream {
	next := NewGraphStream()

	go func() {
		for X := range stream.Outlet {
			if X.Order() >= min && X.Order() <= max {
				next.Outlet <- X
			}
		}
		next.Close()
	}()

	return next
}

package executor

import (
	"bufio"
	"io"
	"time"
)

const (
	sinkFlushThreshold = 64 * 1024
	sinkIdleFlush      = 20 * time.Millisecond
)

// runSink iterates outputs round-robin, writing each result line to w. It
// batches writes up to sinkFlushThreshold bytes before flushing, and
// flushes early after a short idle period, per spec.md §4.8. Output order
// across tasks is not guaranteed to match input order (spec.md §5).
func runSink(outputs []<-chan string, w io.Writer) error {
	bw := bufio.NewWriterSize(w, sinkFlushThreshold)
	pending := 0
	flush := func() error {
		if pending == 0 {
			return nil
		}
		pending = 0
		return bw.Flush()
	}

	open := len(outputs)
	done := make([]bool, len(outputs))
	idle := time.NewTimer(sinkIdleFlush)
	defer idle.Stop()

	for open > 0 {
		progressed := false
		for i, ch := range outputs {
			if done[i] {
				continue
			}
			select {
			case line, ok := <-ch:
				if !ok {
					done[i] = true
					open--
					continue
				}
				progressed = true
				n, err := bw.WriteString(line)
				pending += n
				if err != nil {
					return err
				}
				if err := bw.WriteByte('\n'); err != nil {
					return err
				}
				pending++
				if pending >= sinkFlushThreshold {
					if err := flush(); err != nil {
						return err
					}
				}
			default:
			}
		}
		if progressed {
			if !idle.Stop() {
				<-idle.C
			}
			idle.Reset(sinkIdleFlush)
			continue
		}
		select {
		case <-idle.C:
			if err := flush(); err != nil {
				return err
			}
			idle.Reset(sinkIdleFlush)
		case <-time.After(time.Millisecond):
		}
	}
	return flush()
}

package agent

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"github.com/alex-li-fetchai/evitsam-agent/internal/config"
	"github.com/alex-li-fetchai/evitsam-agent/internal/sam"
)

// Agent handles chat envelopes over a line-delimited JSON transport.
type Agent struct {
	invoker    *sam.Invoker
	outputMIME string

	mu  sync.Mutex
	enc *json.Encoder
}

// New creates an agent around a segmentation backend.
func New(backend sam.Segmenter, cfg *config.Config) *Agent {
	return &Agent{
		invoker:    sam.NewInvoker(backend, cfg.Concurrency, cfg.Timeout),
		outputMIME: cfg.OutputMIME,
	}
}

// Run serves envelopes from stdin until EOF, writing replies to stdout.
func (a *Agent) Run(ctx context.Context) error {
	return a.serve(ctx, os.Stdin, os.Stdout)
}

// serve is the transport loop. Each inbound envelope is acknowledged
// immediately and then handled on its own goroutine; requests only contend
// on the invoker's admission gate and on the output encoder.
func (a *Agent) serve(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	// Image payloads travel base64-inline, so lines get large.
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 64*1024*1024)

	a.mu.Lock()
	a.enc = json.NewEncoder(w)
	a.mu.Unlock()

	var wg sync.WaitGroup
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var env Envelope
		if err := json.Unmarshal(line, &env); err != nil {
			log.Printf("Failed to parse envelope: %v", err)
			continue
		}

		if env.AcknowledgedMsgID != "" {
			log.Printf("Got an acknowledgement for %s", env.AcknowledgedMsgID)
			continue
		}

		a.send(newAck(env.MsgID))

		wg.Add(1)
		go func(env Envelope) {
			defer wg.Done()
			a.handleMessage(ctx, &env)
		}(env)
	}
	wg.Wait()

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}
	return nil
}

// send writes one envelope to the transport. Serialized so concurrent
// handlers cannot interleave output lines.
func (a *Agent) send(env *Envelope) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.enc.Encode(env); err != nil {
		log.Printf("Failed to encode envelope: %v", err)
	}
}

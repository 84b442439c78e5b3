// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient

import (
	"context"
	"errors"
	"fmt"
	"github.com/benbjohnson/clock"
	"github.com/cenkalti/backoff/v4"
	"github.com/diffeo/go-hps/hps"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"strings"
	"time"
)

// Poller waits for long-running operations to finish.  The zero
// value polls with exponential backoff and jitter, starting at half a
// second, never waiting more than five seconds between polls, and
// never giving up.
type Poller struct {
	// InitialInterval is the delay before the second poll.
	InitialInterval time.Duration

	// MaxInterval caps the delay between polls.
	MaxInterval time.Duration

	// MaxElapsed bounds the total wait.  Zero waits forever.
	MaxElapsed time.Duration

	Clock  clock.Clock
	Logger logrus.FieldLogger
}

// setDefaults sets default values for any Poller fields that are
// uninitialized.
func (p *Poller) setDefaults() {
	if p.InitialInterval == time.Duration(0) {
		p.InitialInterval = time.Duration(500) * time.Millisecond
	}

	if p.MaxInterval == time.Duration(0) {
		p.MaxInterval = time.Duration(5) * time.Second
	}

	if p.MaxInterval < p.InitialInterval {
		p.MaxInterval = p.InitialInterval
	}

	if p.Clock == nil {
		p.Clock = clock.New()
	}

	if p.Logger == nil {
		p.Logger = logrus.StandardLogger()
	}
}

// ErrOperationTimeout is wrapped by the error returned when an
// operation does not finish within Poller.MaxElapsed.
var ErrOperationTimeout = errors.New("operation did not finish in time")

// GetOperation retrieves an operation by id.
func (e *Endpoint) GetOperation(ctx context.Context, id string) (*hps.Operation, error) {
	operationPollsTotal.Inc()
	op, err := GetObject[*hps.Operation](ctx, e, id, nil)
	if err == nil && op == nil {
		err = hps.NewClientError(fmt.Sprintf("Operation %s not found", id), "")
	}
	return op, err
}

// Wait polls the operation with the given id on e until it finishes,
// and returns its final state.  Whether it succeeded is up to the
// caller to check.  If MaxElapsed passes first the result is an
// *hps.ClientError wrapping ErrOperationTimeout; the operation itself
// keeps running on the server.
func (p Poller) Wait(ctx context.Context, e *Endpoint, id string) (*hps.Operation, error) {
	p.setDefaults()
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.MaxInterval = p.MaxInterval
	b.MaxElapsedTime = p.MaxElapsed
	b.Clock = p.Clock
	b.Reset()

	for {
		op, err := e.GetOperation(ctx, id)
		if err != nil {
			return nil, err
		}
		if finished, _ := op.Done(); finished {
			return op, nil
		}
		next := b.NextBackOff()
		if next == backoff.Stop {
			return nil, &hps.ClientError{RequestError: &hps.RequestError{
				Reason:      fmt.Sprintf("Operation %s did not finish within %v", id, p.MaxElapsed),
				Description: ErrOperationTimeout.Error(),
				Err:         ErrOperationTimeout,
			}}
		}
		p.Logger.WithFields(logrus.Fields{
			"operation": id,
			"progress":  op.Progress.ValueOr(0),
			"wait":      next,
		}).Debug("operation not finished")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-p.Clock.After(next):
		}
	}
}

// WaitFixed polls the operation every interval until it finishes,
// with no bound on the total wait.
func (p Poller) WaitFixed(ctx context.Context, e *Endpoint, id string, interval time.Duration) (*hps.Operation, error) {
	p.setDefaults()
	for {
		op, err := e.GetOperation(ctx, id)
		if err != nil {
			return nil, err
		}
		if finished, _ := op.Done(); finished {
			return op, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-p.Clock.After(interval):
		}
	}
}

type copyResult struct {
	DestinationIDs []string `mapstructure:"destination_ids"`
}

// CopyAndWait copies objects, waits for the copy to finish using p
// (or a default Poller if p is nil), and returns the ids of the new
// objects.  A copy that fails or does not finish in time is reported
// as an error naming the object type and source ids.
func (e *Endpoint) CopyAndWait(ctx context.Context, objs []hps.Object, p *Poller) ([]string, error) {
	opID, err := e.Copy(ctx, objs)
	if err != nil {
		return nil, err
	}
	if p == nil {
		p = &Poller{}
	}
	jms, err := e.client.JMS()
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, obj := range objs {
		ids = append(ids, obj.ObjectID())
	}
	reason := fmt.Sprintf("Failed to copy %s with ids = [%s]", objs[0].ObjType(), strings.Join(ids, ", "))

	op, err := p.Wait(ctx, jms.Endpoint, opID)
	var ce *hps.ClientError
	if errors.As(err, &ce) {
		return nil, hps.WrapClientError(reason, err)
	} else if err != nil {
		return nil, err
	}
	if _, succeeded := op.Done(); !succeeded {
		return nil, hps.NewAPIError(reason, operationFailure(op))
	}

	var result copyResult
	if err := mapstructure.Decode(op.Result.ValueOr(nil), &result); err != nil {
		return nil, err
	}
	return result.DestinationIDs, nil
}

// operationFailure describes why an operation failed.
func operationFailure(op *hps.Operation) string {
	var parts []string
	if status := op.Status.ValueOr(""); status != "" {
		parts = append(parts, status)
	}
	for _, msg := range op.Messages.ValueOr(nil) {
		if text, ok := msg["msg"].(string); ok {
			parts = append(parts, text)
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("operation %s failed", op.ObjectID())
	}
	return strings.Join(parts, "\n")
}

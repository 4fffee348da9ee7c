// Warden - Role-Based Access Control Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package authz

import (
	"context"
)

// Handle enqueues requests for an Actor and waits for the answers.
//
// The zero Handle is not connected to any actor; every call fails with
// ErrSendFailed. If ctx ends while a request is queued or running, the call
// returns ctx.Err() but the actor still completes the request.
type Handle struct {
	mailbox chan<- message
	stopped <-chan struct{}
	exited  <-chan struct{}
}

// CheckPermission asks whether account may perform method on path.
// On error the answer is false and callers must deny.
func (h Handle) CheckPermission(ctx context.Context, account, method, path string) (bool, error) {
	reply := make(chan bool, 1)
	msg := checkPermission{account: account, method: method, path: path, reply: reply}
	if err := h.send(ctx, msg); err != nil {
		return false, err
	}
	allowed, err := await(ctx, h.exited, reply)
	if err != nil {
		return false, err
	}
	return allowed, nil
}

// Reset reloads the policy from the directory and waits for the outcome.
// A reload failure is returned as a *DirectoryError; the actor keeps
// serving the previous snapshot.
func (h Handle) Reset(ctx context.Context) error {
	reply := make(chan error, 1)
	if err := h.send(ctx, resetPolicies{reply: reply}); err != nil {
		return err
	}
	reloadErr, err := await(ctx, h.exited, reply)
	if err != nil {
		return err
	}
	return reloadErr
}

// ResetAsync queues a reload and returns once the actor has accepted it.
// Reload failures are only logged.
func (h Handle) ResetAsync(ctx context.Context) error {
	return h.send(ctx, resetPolicies{})
}

// Status returns the actor's view of the installed snapshot.
func (h Handle) Status(ctx context.Context) (SnapshotStatus, error) {
	reply := make(chan SnapshotStatus, 1)
	if err := h.send(ctx, statusRequest{reply: reply}); err != nil {
		return SnapshotStatus{}, err
	}
	return await(ctx, h.exited, reply)
}

func (h Handle) send(ctx context.Context, msg message) error {
	if h.mailbox == nil {
		RecordCommError(ErrSendFailed)
		return ErrSendFailed
	}
	select {
	case <-h.stopped:
		RecordCommError(ErrSendFailed)
		return ErrSendFailed
	default:
	}

	select {
	case h.mailbox <- msg:
		AuthzMailboxDepth.Set(float64(len(h.mailbox)))
		return nil
	case <-h.stopped:
		RecordCommError(ErrSendFailed)
		return ErrSendFailed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// await waits for the reply to one request. A stopping actor still answers
// the message it is processing, so only a drained actor yields ErrNoReply.
func await[T any](ctx context.Context, exited <-chan struct{}, reply <-chan T) (T, error) {
	var zero T
	select {
	case v, ok := <-reply:
		if !ok {
			RecordCommError(ErrNoReply)
			return zero, ErrNoReply
		}
		return v, nil
	case <-exited:
		// The actor may have answered just before exiting.
		select {
		case v, ok := <-reply:
			if ok {
				return v, nil
			}
		default:
		}
		RecordCommError(ErrNoReply)
		return zero, ErrNoReply
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

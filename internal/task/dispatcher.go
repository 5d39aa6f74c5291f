package task

import (
	"context"
	"errors"

	"github.com/fhuszti/medias-display-go/internal/logger"
	"github.com/fhuszti/medias-display-go/internal/model"
	"github.com/fhuszti/medias-display-go/internal/port"
	"github.com/fhuszti/medias-display-go/internal/uuid"
	"github.com/hibiken/asynq"
)

const defaultQueue = "default"

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

// inspector looks up the task that holds a task ID.
type inspector interface {
	GetTaskInfo(queue, id string) (*asynq.TaskInfo, error)
	DeleteTask(queue, id string) error
	Close() error
}

type Dispatcher struct {
	client    enqueuer
	inspector inspector
}

// compile-time check
var _ port.TaskDispatcher = (*Dispatcher)(nil)

func NewDispatcher(addr, password string) *Dispatcher {
	opt := asynq.RedisClientOpt{Addr: addr, Password: password}
	return &Dispatcher{client: asynq.NewClient(opt), inspector: asynq.NewInspector(opt)}
}

// EnqueueResizeImage queues one thumbnail generation. A resize already
// pending for the same media and size is left alone. One that exhausted its
// retries and sits in the archive is dropped and queued again.
func (d *Dispatcher) EnqueueResizeImage(ctx context.Context, id uuid.UUID, size model.Size) error {
	t, err := NewResizeImageTask(id, size)
	if err != nil {
		return err
	}
	taskID := resizeTaskID(id, size)
	opts := []asynq.Option{asynq.Queue(defaultQueue), asynq.TaskID(taskID), asynq.MaxRetry(5)}

	_, err = d.client.EnqueueContext(ctx, t, opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		if !d.dropArchived(ctx, taskID) {
			logger.Debugf(ctx, "resize of media #%s to %q already queued", id, size)
			return nil
		}
		_, err = d.client.EnqueueContext(ctx, t, opts...)
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return nil
		}
	}
	if err != nil {
		return err
	}
	logger.Infof(ctx, "queued resize of media #%s to %q", id, size)
	return nil
}

// dropArchived deletes the task holding taskID when it is archived, and
// reports whether it did.
func (d *Dispatcher) dropArchived(ctx context.Context, taskID string) bool {
	if d.inspector == nil {
		return false
	}
	info, err := d.inspector.GetTaskInfo(defaultQueue, taskID)
	if err != nil {
		logger.Warnf(ctx, "could not inspect task %s: %v", taskID, err)
		return false
	}
	if info.State != asynq.TaskStateArchived {
		return false
	}
	if err := d.inspector.DeleteTask(defaultQueue, taskID); err != nil {
		logger.Warnf(ctx, "could not delete archived task %s: %v", taskID, err)
		return false
	}
	logger.Infof(ctx, "dropped archived task %s to queue it again", taskID)
	return true
}

func (d *Dispatcher) Close() error {
	err := d.client.Close()
	if d.inspector != nil {
		if iErr := d.inspector.Close(); err == nil {
			err = iErr
		}
	}
	return err
}

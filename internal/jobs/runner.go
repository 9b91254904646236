package jobs

import (
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	cron "github.com/robfig/cron"
	"github.com/sirupsen/logrus"
)

// Task is a background job with a cron schedule.
type Task interface {
	Name() string
	Schedule() string
	Run()
}

// TaskExecutor runs tasks on their cron schedules, skipping a tick when the
// previous run of the same task is still in flight.
type TaskExecutor struct {
	cron    *cron.Cron
	tasks   []Task
	running mapset.Set[string]
	mu      sync.Mutex
}

func NewTaskExecutor(tasks []Task) *TaskExecutor {
	return &TaskExecutor{
		cron:    cron.New(),
		tasks:   tasks,
		running: mapset.NewSet[string](),
	}
}

// Run registers all tasks with the cron and starts it. Each task runs in its
// own goroutine inside the cron.
func (t *TaskExecutor) Run() {
	for _, task := range t.tasks {
		err := t.cron.AddFunc(task.Schedule(), func() {
			t.mu.Lock()
			if t.running.Contains(task.Name()) {
				t.mu.Unlock()
				logrus.Warnf("task %s is still running, skipping tick", task.Name())
				return
			}
			t.running.Add(task.Name())
			t.mu.Unlock()

			defer func() {
				t.mu.Lock()
				defer t.mu.Unlock()
				t.running.Remove(task.Name())
			}()

			task.Run()
		})

		if err != nil {
			logrus.Errorf("failed to add task %s to cron: %v", task.Name(), err)
			panic(err)
		}
	}

	t.cron.Start()
}

func (t *TaskExecutor) Stop() {
	logrus.Info("stopping all tasks")
	t.cron.Stop()
}

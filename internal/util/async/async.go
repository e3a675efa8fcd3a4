package async

import (
	"context"
	"fmt"
	"runtime/debug"
)

// Task represents an asynchronous operation with a name and function.
type Task struct {
	Name string
	Func func(context.Context) error
}

// Result is the outcome of a single Task.
type Result struct {
	Name string
	Err  error
}

// RunAll executes tasks concurrently and returns one Result per task, in the
// order the tasks were given. Every task runs to completion regardless of
// what the others do. A panicking task is reported as an error.
//
// Example:
//
//	results := RunAll(ctx, []Task{
//	    {Name: "hetzner", Func: provisionHetzner},
//	    {Name: "aws", Func: provisionAWS},
//	})
//	for _, r := range results {
//	    if r.Err != nil { ... }
//	}
func RunAll(ctx context.Context, tasks []Task) []Result {
	results := make([]Result, len(tasks))
	if len(tasks) == 0 {
		return results
	}

	type indexed struct {
		index int
		err   error
	}
	done := make(chan indexed, len(tasks))

	for i, task := range tasks {
		go func() {
			done <- indexed{index: i, err: runTask(ctx, task)}
		}()
	}

	for range len(tasks) {
		res := <-done
		results[res.index] = Result{Name: tasks[res.index].Name, Err: res.err}
	}

	return results
}

func runTask(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task %s panicked: %v\n%s", task.Name, r, debug.Stack())
		}
	}()
	return task.Func(ctx)
}

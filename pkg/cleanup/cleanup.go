package cleanup

import "log/slog"

type Job struct {
	Name string
	F    func() error
}

var (
	jobs []*Job
)

func Register(j *Job) {
	jobs = append(jobs, j)
}

// CleanUp runs registered jobs in reverse registration order, so resources
// opened last are released first.
func CleanUp() {
	for i := len(jobs) - 1; i >= 0; i-- {
		j := jobs[i]
		slog.Info("cleanup job started", slog.String("job", j.Name))
		err := j.F()
		if err != nil {
			slog.Error("cleanup job finished with error", slog.String("job", j.Name), slog.String("error", err.Error()))
		} else {
			slog.Info("cleaned", slog.String("job", j.Name))
		}
	}
}

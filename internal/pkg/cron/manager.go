package cron

import (
	"Rendezvous/internal/job"
	"context"
	log "log/slog"

	"github.com/robfig/cron/v3"
)

type Manager struct {
	engine          *cron.Cron
	mediaCleanupJob *job.MediaCleanupJob
	sweepSpec       string
}

func NewCronManager(mediaCleanupJob *job.MediaCleanupJob, sweepSpec string) *Manager {
	return &Manager{
		engine:          cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		mediaCleanupJob: mediaCleanupJob,
		sweepSpec:       sweepSpec,
	}
}

// RegisterJobs 注册定时任务
func (s *Manager) RegisterJobs() error {
	if s.sweepSpec == "" {
		log.Warn("孤儿附件清理任务未配置，跳过")
		return nil
	}
	if _, err := s.engine.AddJob(s.sweepSpec, s.mediaCleanupJob); err != nil {
		return err
	}
	return nil
}

// Init 注册并启动所有任务
func (s *Manager) Init() error {
	if err := s.RegisterJobs(); err != nil {
		return err
	}
	s.Start()
	return nil
}

func (s *Manager) Start() {
	log.Info("Cron 定时任务引擎启动")
	s.engine.Start()
}

// Stop 停止调度并等待正在执行的任务结束
func (s *Manager) Stop(ctx context.Context) {
	log.Info("Cron 定时任务引擎停止")
	select {
	case <-s.engine.Stop().Done():
	case <-ctx.Done():
	}
}

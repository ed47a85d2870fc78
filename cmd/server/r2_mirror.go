package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"structurebuilder.ai/internal/persistence/r2s3"
)

type r2MirrorRuntime struct {
	enabled bool
	mirror  *r2s3.Mirror
}

func buildR2MirrorRuntime(dataDir string, logger *log.Logger) (*r2MirrorRuntime, error) {
	enabled := envBool("SB_R2_MIRROR", false)
	if !enabled {
		return &r2MirrorRuntime{enabled: false}, nil
	}

	cfg := r2s3.Config{
		Endpoint:        strings.TrimSpace(os.Getenv("SB_R2_ENDPOINT")),
		Bucket:          strings.TrimSpace(os.Getenv("SB_R2_BUCKET")),
		AccessKeyID:     strings.TrimSpace(os.Getenv("SB_R2_ACCESS_KEY_ID")),
		SecretAccessKey: strings.TrimSpace(os.Getenv("SB_R2_SECRET_ACCESS_KEY")),
		Region:          strings.TrimSpace(os.Getenv("SB_R2_REGION")),
	}
	if cfg.Endpoint == "" || cfg.Bucket == "" || cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return nil, fmt.Errorf("SB_R2_MIRROR=true but SB_R2_ENDPOINT/SB_R2_BUCKET/SB_R2_ACCESS_KEY_ID/SB_R2_SECRET_ACCESS_KEY are not fully set")
	}

	client, err := r2s3.New(cfg)
	if err != nil {
		return nil, err
	}

	mirror := r2s3.NewMirror(client, r2s3.MirrorConfig{
		DataDir: dataDir,
		Prefix:  strings.TrimSpace(os.Getenv("SB_R2_PREFIX")),
		Workers: envInt("SB_R2_UPLOAD_WORKERS", 2),
		Logger:  logger,
	})
	return &r2MirrorRuntime{enabled: true, mirror: mirror}, nil
}

func (r *r2MirrorRuntime) Close() {
	if r == nil || r.mirror == nil {
		return
	}
	r.mirror.Close()
}

func (r *r2MirrorRuntime) Enqueue(localPath string) {
	if r == nil || !r.enabled || r.mirror == nil {
		return
	}
	r.mirror.Enqueue(localPath)
}

func (r *r2MirrorRuntime) Stats() (r2s3.Stats, bool) {
	if r == nil || !r.enabled || r.mirror == nil {
		return r2s3.Stats{}, false
	}
	return r.mirror.Stats(), true
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// Package config reads the client's client.toml.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml"

	"voxelgrid.ai/internal/client/chunkdraw"
	"voxelgrid.ai/internal/client/mesh"
)

type Config struct {
	Connection struct {
		ServerURL string
		Name      string
	}
	Meshing struct {
		Workers       int
		QueueCap      int
		DrainPerFrame int
	}
	Camera struct {
		X, Y, Z float32
	}
}

func Default() Config {
	c := Config{}
	c.Connection.ServerURL = "ws://127.0.0.1:8080/v1/ws"
	c.Connection.Name = "player"
	c.Meshing.Workers = mesh.DefaultWorkers
	c.Meshing.QueueCap = mesh.DefaultQueueCap
	c.Meshing.DrainPerFrame = chunkdraw.DefaultDrainPerFrame
	c.Camera.Y = 120
	return c
}

// Read loads path, or writes the defaults there when the file does not exist.
func Read(path string) (Config, error) {
	c := Default()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		data, err := toml.Marshal(c)
		if err != nil {
			return c, fmt.Errorf("failed encoding default config: %w", err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return c, fmt.Errorf("failed creating config: %w", err)
		}
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("error reading config: %w", err)
	}
	if err := toml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("error decoding config: %w", err)
	}
	return c.normalized(), nil
}

func (c Config) normalized() Config {
	d := Default()
	if c.Connection.ServerURL == "" {
		c.Connection.ServerURL = d.Connection.ServerURL
	}
	if c.Connection.Name == "" {
		c.Connection.Name = d.Connection.Name
	}
	if c.Meshing.Workers <= 0 {
		c.Meshing.Workers = d.Meshing.Workers
	}
	if c.Meshing.QueueCap <= 0 {
		c.Meshing.QueueCap = d.Meshing.QueueCap
	}
	if c.Meshing.DrainPerFrame <= 0 {
		c.Meshing.DrainPerFrame = d.Meshing.DrainPerFrame
	}
	return c
}

func (c Config) PoolConfig() mesh.PoolConfig {
	return mesh.PoolConfig{Workers: c.Meshing.Workers, QueueCap: c.Meshing.QueueCap}
}

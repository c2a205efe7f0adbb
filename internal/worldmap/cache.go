package worldmap

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/cryptotribes/server/pkg/errors"
)

// Loader fetches the occupied coordinates from storage.
type Loader func(ctx context.Context) ([][2]int, error)

// Cache tracks occupied map coordinates in-process so village creation
// can find a free spot without rescanning the table. It loads lazily and
// is invalidated explicitly when villages are created outside this
// process.
type Cache struct {
	mu       sync.Mutex
	size     int
	loader   Loader
	occupied map[[2]int]bool
	loaded   bool
	rng      *rand.Rand
}

func New(size int, loader Loader) *Cache {
	return &Cache{
		size:   size,
		loader: loader,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// AllocateFree reserves and returns a free coordinate. Random probing
// first, linear scan as fallback when the world is nearly full.
func (c *Cache) AllocateFree(ctx context.Context) (int, int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureLoaded(ctx); err != nil {
		return 0, 0, err
	}

	for attempt := 0; attempt < 4*c.size; attempt++ {
		x := c.rng.Intn(c.size)
		y := c.rng.Intn(c.size)
		if !c.occupied[[2]int{x, y}] {
			c.occupied[[2]int{x, y}] = true
			return x, y, nil
		}
	}

	for x := 0; x < c.size; x++ {
		for y := 0; y < c.size; y++ {
			if !c.occupied[[2]int{x, y}] {
				c.occupied[[2]int{x, y}] = true
				return x, y, nil
			}
		}
	}

	return 0, 0, errors.New(errors.ErrCodePreconditionFailed, fmt.Sprintf("world map is full (%dx%d)", c.size, c.size))
}

// Release frees a coordinate reserved by AllocateFree whose village
// creation failed.
func (c *Cache) Release(x, y int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.occupied, [2]int{x, y})
}

// MarkOccupied records a coordinate taken by an externally created
// village.
func (c *Cache) MarkOccupied(x, y int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.occupied == nil {
		c.occupied = make(map[[2]int]bool)
	}
	c.occupied[[2]int{x, y}] = true
}

// Invalidate drops the cached state; the next allocation reloads from
// storage.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.occupied = nil
	c.loaded = false
}

func (c *Cache) ensureLoaded(ctx context.Context) error {
	if c.loaded {
		return nil
	}

	coords, err := c.loader(ctx)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodePersistenceError, "failed to load occupied coordinates")
	}

	// Merge into anything recorded via MarkOccupied before the first load.
	if c.occupied == nil {
		c.occupied = make(map[[2]int]bool, len(coords))
	}
	for _, coord := range coords {
		c.occupied[coord] = true
	}
	c.loaded = true
	return nil
}

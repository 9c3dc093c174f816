package catalog

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"
)

const DefaultSeedSize = 50

type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator uses rng for prices, stock, categories and images. A nil
// rng gets a time-seeded source.
func NewGenerator(rng *rand.Rand) *Generator {
	if rng == nil {
		now := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(now, now>>1))
	}
	return &Generator{rng: rng}
}

func (g *Generator) Generate(count int) []Product {
	if count < 0 {
		count = 0
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]Product, 0, count)
	for i := 1; i <= count; i++ {
		out = append(out, Product{
			ID:          int64(i),
			Name:        fmt.Sprintf("Product %d", i),
			Description: fmt.Sprintf("Detailed description of product %d", i),
			Price:       g.price(),
			Stock:       g.rng.IntN(100),
			Category:    Categories[g.rng.IntN(len(Categories))],
			ImageURL:    fmt.Sprintf("https://picsum.photos/200/200?random=%d", g.rng.IntN(1000)),
		})
	}
	return out
}

func (g *Generator) price() float64 {
	p := math.Round(g.rng.Float64()*1000*100) / 100
	if p < 0.01 {
		p = 0.01
	}
	return p
}

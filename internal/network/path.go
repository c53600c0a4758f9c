package network

import (
	"container/heap"
	"context"
	"math"

	"github.com/nvandessel/neuropath/internal/logging"
)

// FindDecisionPath finds the cheapest path from start to end, using each
// synapse's weight as its cost, and reinforces every synapse on it.
//
// It returns the keys from start to end inclusive. The boolean is false when
// no path exists, including when either key is not a neuron; in that case
// nothing is reinforced. A search from a neuron to itself returns a
// one-element path.
func (g *Graph) FindDecisionPath(start, end string) ([]string, bool) {
	res, _ := g.Search(context.Background(), start, end)
	return res.Path, res.Found
}

// FindDecisionPathContext is FindDecisionPath with cancellation. A cancelled
// search returns ctx.Err() and reinforces nothing.
func (g *Graph) FindDecisionPathContext(ctx context.Context, start, end string) ([]string, bool, error) {
	res, err := g.Search(ctx, start, end)
	if err != nil {
		return nil, false, err
	}
	return res.Path, res.Found, nil
}

// Search runs a decision path search and reports the path, its cost before
// reinforcement, and every weight change it made.
func (g *Graph) Search(ctx context.Context, start, end string) (SearchResult, error) {
	res := SearchResult{Start: start, End: end}

	path, cost, err := g.shortestPath(ctx, start, end)
	if err != nil {
		return res, err
	}

	if path != nil {
		res.Path = path
		res.Found = true
		res.Cost = cost
		for i := 0; i+1 < len(path); i++ {
			if change, ok := g.strengthen(path[i], path[i+1]); ok {
				res.Reinforced = append(res.Reinforced, change)
			}
		}
	}

	g.debug("decision path search", "start", start, "end", end, "found", res.Found, "hops", len(res.Reinforced), "cost", res.Cost)
	g.decisions.Log(logging.Decision{
		Event: logging.DecisionPathSearch,
		Search: &logging.SearchTrace{
			Start: start,
			End:   end,
			Found: res.Found,
			Path:  res.Path,
			Cost:  res.Cost,
		},
	})
	return res, nil
}

// shortestPath is Dijkstra with a lazy-decrease-key min-heap. It returns a
// nil path when end is unreachable.
func (g *Graph) shortestPath(ctx context.Context, start, end string) ([]string, float64, error) {
	if !g.HasNode(start) || !g.HasNode(end) {
		return nil, 0, nil
	}
	if start == end {
		return []string{start}, 0, nil
	}

	dist := map[string]float64{start: 0}
	prev := make(map[string]string)
	visited := make(map[string]bool, len(g.nodes))

	pq := frontier{{key: start, cost: 0}}
	heap.Init(&pq)

	for pq.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}

		item := heap.Pop(&pq).(*frontierItem)
		u := item.key
		if visited[u] {
			continue
		}
		visited[u] = true
		if u == end {
			break
		}

		for _, v := range g.neighbors(u) {
			if visited[v] {
				continue
			}
			nd := dist[u] + g.adj[u][v]
			if old, seen := dist[v]; seen && nd >= old {
				continue
			}
			dist[v] = nd
			prev[v] = u
			heap.Push(&pq, &frontierItem{key: v, cost: nd})
			if g.logger != nil {
				g.logger.Log(ctx, logging.LevelTrace, "relaxed", "from", u, "to", v, "cost", nd)
			}
		}
	}

	if !visited[end] {
		return nil, 0, nil
	}

	var path []string
	for at := end; ; at = prev[at] {
		path = append(path, at)
		if at == start {
			break
		}
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, dist[end], nil
}

// PathCost sums the current weights along path. It reports false if any
// consecutive pair is not connected.
func (g *Graph) PathCost(path []string) (float64, bool) {
	var total float64
	for i := 0; i+1 < len(path); i++ {
		w, ok := g.Weight(path[i], path[i+1])
		if !ok {
			return math.Inf(1), false
		}
		total += w
	}
	return total, true
}

type frontierItem struct {
	key  string
	cost float64
}

// frontier is a min-heap of frontierItem ordered by cost, then key, so that
// equal-cost searches always settle neurons in the same order.
type frontier []*frontierItem

func (pq frontier) Len() int { return len(pq) }

func (pq frontier) Less(i, j int) bool {
	if pq[i].cost != pq[j].cost {
		return pq[i].cost < pq[j].cost
	}
	return pq[i].key < pq[j].key
}

func (pq frontier) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }

func (pq *frontier) Push(x any) { *pq = append(*pq, x.(*frontierItem)) }

func (pq *frontier) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}

package ingest

import "sync"

// DedupWindow lembra os últimos N ids de evento processados. A entrega
// do webhook é at-least-once: retries do provedor chegam com o mesmo
// message id e precisam ser descartados em silêncio. Checagem e marcação
// são separadas: o id só entra na janela depois do processamento dar
// certo, senão o retry de um evento que falhou seria perdido pra sempre.
type DedupWindow struct {
	mu    sync.Mutex
	seen  map[string]struct{}
	order []string // fila FIFO para eviction
	cap   int
}

func NewDedupWindow(capacity int) *DedupWindow {
	if capacity <= 0 {
		capacity = 512
	}
	return &DedupWindow{
		seen: make(map[string]struct{}, capacity),
		cap:  capacity,
	}
}

// Seen reporta se o id já está na janela. Não marca.
func (d *DedupWindow) Seen(id string) bool {
	if id == "" {
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	_, ok := d.seen[id]
	return ok
}

// Mark registra o id como processado.
func (d *DedupWindow) Mark(id string) {
	if id == "" {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return
	}

	d.seen[id] = struct{}{}
	d.order = append(d.order, id)
	if len(d.order) > d.cap {
		oldest := d.order[0]
		d.order = d.order[1:]
		delete(d.seen, oldest)
	}
}

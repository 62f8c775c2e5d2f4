package image

import "sync"

// Catalog is an ordered sequence of Images, looked up by exact name. A
// Session's catalog is mutated only by the orchestrator, and is read by
// the image-request worker under the same lock it is written with (§5
// "Shared-resource policy").
type Catalog struct {
	mu     sync.Mutex
	order  []*Image
	byName map[string]*Image
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{byName: make(map[string]*Image)}
}

// Add appends im to the catalog. If an image with the same name already
// exists, it is replaced in place (order preserved) rather than
// duplicated, matching "if uEnv.txt is not already in the catalog" checks
// in the orchestrator's catalog-assembly steps.
func (c *Catalog) Add(im *Image) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.byName[im.Name()]; ok {
		for i, e := range c.order {
			if e == existing {
				c.order[i] = im
				break
			}
		}
		c.byName[im.Name()] = im
		return
	}

	c.order = append(c.order, im)
	c.byName[im.Name()] = im
}

// AddAll appends a slice of images in order.
func (c *Catalog) AddAll(images []*Image) {
	for _, im := range images {
		c.Add(im)
	}
}

// Has reports whether name is present in the catalog.
func (c *Catalog) Has(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.byName[name]
	return ok
}

// Lookup returns the image named name, or nil if absent.
func (c *Catalog) Lookup(name string) *Image {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.byName[name]
}

// Images returns a snapshot of the catalog in insertion order. The
// returned slice is a copy; mutating it does not affect the catalog.
func (c *Catalog) Images() []*Image {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Image, len(c.order))
	copy(out, c.order)
	return out
}

// Len returns the number of images currently in the catalog.
func (c *Catalog) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.order)
}

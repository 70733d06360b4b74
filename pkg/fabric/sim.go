package fabric

import (
	"context"
	"fmt"
	"hash/fnv"
	"io"
	"net"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/fabvis/fabvis/pkg/slice"
	"github.com/fabvis/fabvis/pkg/util"
	"github.com/fabvis/fabvis/pkg/validate"
)

// SimController is an in-memory Controller: drafts being edited locally plus
// a fake remote store of submitted slices. It mirrors the control framework's
// draft semantics: loading a remote slice creates a local draft, edits apply
// to the draft, and submit provisions and settles it. It is the backing for
// tests and offline use.
type SimController struct {
	mu      sync.Mutex
	drafts  map[string]*slice.Slice
	isNew   map[string]bool
	remotes map[string]*slice.Slice
}

// NewSimController creates an empty simulated control framework.
func NewSimController() *SimController {
	return &SimController{
		drafts:  make(map[string]*slice.Slice),
		isNew:   make(map[string]bool),
		remotes: make(map[string]*slice.Slice),
	}
}

// ============================================================================
// Slice lifecycle
// ============================================================================

func (c *SimController) CreateSlice(ctx context.Context, name string) (*slice.Slice, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.drafts[name]; ok {
		return nil, fmt.Errorf("slice '%s': %w", name, util.ErrAlreadyExists)
	}
	if _, ok := c.remotes[name]; ok {
		return nil, fmt.Errorf("slice '%s': %w", name, util.ErrAlreadyExists)
	}
	c.drafts[name] = slice.New(name)
	c.isNew[name] = true
	return c.drafts[name].Clone(), nil
}

func (c *SimController) GetSlice(ctx context.Context, name string) (*slice.Slice, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	sl, err := c.draftLocked(name)
	if err != nil {
		return nil, err
	}
	return sl.Clone(), nil
}

// draftLocked returns the draft for a slice, creating one from the remote
// copy on first access so subsequent edits stay local until submit.
func (c *SimController) draftLocked(name string) (*slice.Slice, error) {
	if sl, ok := c.drafts[name]; ok {
		return sl, nil
	}
	if remote, ok := c.remotes[name]; ok {
		draft := remote.Clone()
		c.drafts[name] = draft
		c.isNew[name] = false
		return draft, nil
	}
	return nil, fmt.Errorf("slice '%s': %w", name, util.ErrNotFound)
}

func (c *SimController) ListSlices(ctx context.Context) ([]slice.Summary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []slice.Summary
	for _, sl := range c.remotes {
		out = append(out, sl.Summarize())
	}
	for name, sl := range c.drafts {
		if _, ok := c.remotes[name]; !ok {
			out = append(out, sl.Summarize())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (c *SimController) SubmitSlice(ctx context.Context, name string) (*slice.Slice, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	draft, ok := c.drafts[name]
	if !ok {
		return nil, util.ErrNothingToSubmit
	}
	if !draft.State.Submittable() {
		return nil, fmt.Errorf("slice '%s' in state %s cannot be submitted", name, draft.State)
	}

	// The remote rejects invalid topologies; the draft is kept for retry.
	if result := validate.Validate(draft); !result.Valid {
		msgs := make([]string, 0, len(result.Issues))
		for _, issue := range result.Issues {
			if issue.Severity == validate.SeverityError {
				msgs = append(msgs, issue.Message)
			}
		}
		return nil, util.NewValidationError(msgs...)
	}

	if draft.ID == "" {
		draft.ID = uuid.NewString()
	}
	c.provisionLocked(draft)
	draft.State = slice.StateActive
	draft.Dirty = false

	c.remotes[name] = draft.Clone()
	c.isNew[name] = false
	return draft.Clone(), nil
}

// provisionLocked fakes the control framework standing up resources:
// reservation states, management addresses, usernames, and MACs.
func (c *SimController) provisionLocked(sl *slice.Slice) {
	for i, n := range sl.Nodes {
		n.State = slice.ResActive
		if n.ManagementIP == "" {
			n.ManagementIP = fmt.Sprintf("10.30.%d.%d", (i/250)+1, (i%250)+10)
		}
		if n.Username == "" {
			n.Username = ImageUsername(n.Image)
		}
		if n.Site == "auto" || n.Site == "" {
			n.Site = "STAR"
		}
		for _, iface := range n.Interfaces() {
			if iface.MAC == "" {
				iface.MAC = deterministicMAC(iface.Name)
			}
		}
	}
}

func (c *SimController) RefreshSlice(ctx context.Context, name string) (*slice.Slice, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	remote, ok := c.remotes[name]
	if !ok {
		return nil, fmt.Errorf("slice '%s' has never been submitted: %w", name, util.ErrNotFound)
	}
	// Local edits are dropped wholesale; the remote copy becomes the draft.
	draft := remote.Clone()
	c.drafts[name] = draft
	c.isNew[name] = false
	return draft.Clone(), nil
}

func (c *SimController) DeleteSlice(ctx context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, isDraft := c.drafts[name]
	_, isRemote := c.remotes[name]
	if !isDraft && !isRemote {
		return fmt.Errorf("slice '%s': %w", name, util.ErrNotFound)
	}
	delete(c.drafts, name)
	delete(c.isNew, name)
	delete(c.remotes, name)
	return nil
}

// ============================================================================
// Topology edits
// ============================================================================

func (c *SimController) AddNode(ctx context.Context, sliceName string, spec NodeSpec) (*slice.Slice, error) {
	return c.editDraft(sliceName, func(sl *slice.Slice) error {
		spec = spec.withDefaults()
		return sl.AddNode(&slice.Node{
			Name:  spec.Name,
			Site:  spec.Site,
			Cores: spec.Cores,
			RAM:   spec.RAM,
			Disk:  spec.Disk,
			Image: spec.Image,
		})
	})
}

func (c *SimController) RemoveNode(ctx context.Context, sliceName, nodeName string) (*slice.Slice, error) {
	return c.editDraft(sliceName, func(sl *slice.Slice) error {
		return sl.RemoveNode(nodeName)
	})
}

func (c *SimController) UpdateNode(ctx context.Context, sliceName, nodeName string, update NodeUpdate) (*slice.Slice, error) {
	return c.editDraft(sliceName, func(sl *slice.Slice) error {
		n := sl.GetNode(nodeName)
		if n == nil {
			return fmt.Errorf("node '%s': %w", nodeName, util.ErrNotFound)
		}
		if update.Site != nil {
			n.Site = *update.Site
		}
		if update.Cores != nil {
			n.Cores = *update.Cores
		}
		if update.RAM != nil {
			n.RAM = *update.RAM
		}
		if update.Disk != nil {
			n.Disk = *update.Disk
		}
		if update.Image != nil {
			n.Image = *update.Image
		}
		sl.Dirty = true
		return nil
	})
}

func (c *SimController) AddComponent(ctx context.Context, sliceName, nodeName string, spec ComponentSpec) (*slice.Slice, error) {
	model := LookupModel(spec.Model)
	if model == nil {
		return nil, fmt.Errorf("component model '%s': %w", spec.Model, util.ErrNotFound)
	}
	return c.editDraft(sliceName, func(sl *slice.Slice) error {
		comp := &slice.Component{
			Name:  spec.Name,
			Model: model.Model,
			Type:  model.Type,
		}
		for p := 0; p < model.Ports; p++ {
			comp.Interfaces = append(comp.Interfaces, &slice.Interface{
				Name: fmt.Sprintf("%s-%s-p%d", nodeName, spec.Name, p+1),
			})
		}
		return sl.AddComponent(nodeName, comp)
	})
}

func (c *SimController) RemoveComponent(ctx context.Context, sliceName, nodeName, compName string) (*slice.Slice, error) {
	return c.editDraft(sliceName, func(sl *slice.Slice) error {
		return sl.RemoveComponent(nodeName, compName)
	})
}

func (c *SimController) AddNetwork(ctx context.Context, sliceName string, spec NetworkSpec) (*slice.Slice, error) {
	return c.editDraft(sliceName, func(sl *slice.Slice) error {
		net, err := sl.AddNetwork(spec.Name, spec.Type, spec.Interfaces)
		if err != nil {
			return err
		}
		net.Subnet = spec.Subnet
		net.Gateway = spec.Gateway
		return nil
	})
}

func (c *SimController) RemoveNetwork(ctx context.Context, sliceName, netName string) (*slice.Slice, error) {
	return c.editDraft(sliceName, func(sl *slice.Slice) error {
		return sl.RemoveNetwork(netName)
	})
}

func (c *SimController) AttachInterface(ctx context.Context, sliceName, ifaceName, netName string) (*slice.Slice, error) {
	return c.editDraft(sliceName, func(sl *slice.Slice) error {
		return sl.Attach(ifaceName, netName)
	})
}

func (c *SimController) DetachInterface(ctx context.Context, sliceName, ifaceName string) (*slice.Slice, error) {
	return c.editDraft(sliceName, func(sl *slice.Slice) error {
		return sl.Detach(ifaceName)
	})
}

// editDraft applies one mutation to a slice's draft and returns the updated
// snapshot. Failed edits leave the draft unchanged.
func (c *SimController) editDraft(name string, fn func(*slice.Slice) error) (*slice.Slice, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	draft, err := c.draftLocked(name)
	if err != nil {
		return nil, err
	}
	scratch := draft.Clone()
	if err := fn(scratch); err != nil {
		return nil, err
	}
	c.drafts[name] = scratch
	return scratch.Clone(), nil
}

// ============================================================================
// Reads
// ============================================================================

func (c *SimController) ValidateSlice(ctx context.Context, name string) (*validate.Result, error) {
	sl, err := c.GetSlice(ctx, name)
	if err != nil {
		return nil, err
	}
	return validate.Validate(sl), nil
}

func (c *SimController) ListSites(ctx context.Context) ([]Site, error) {
	names := make([]string, 0, len(SiteLocations))
	for name := range SiteLocations {
		names = append(names, name)
	}
	sort.Strings(names)

	sites := make([]Site, 0, len(names))
	for _, name := range names {
		loc := SiteLocations[name]
		cap := int(hashOf(name)%8+2) * 64
		sites = append(sites, Site{
			Name:          name,
			Lat:           loc[0],
			Lon:           loc[1],
			State:         "Active",
			Hosts:         int(hashOf(name)%6) + 2,
			CoresFree:     cap / 2,
			CoresCapacity: cap,
			RAMFree:       cap * 2,
			RAMCapacity:   cap * 4,
		})
	}
	return sites, nil
}

// ============================================================================
// Sessions
// ============================================================================

// OpenSession returns an in-memory echo stream for a provisioned node.
func (c *SimController) OpenSession(ctx context.Context, sliceName, nodeName string) (io.ReadWriteCloser, error) {
	c.mu.Lock()
	sl, err := c.draftLocked(sliceName)
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}
	n := sl.GetNode(nodeName)
	c.mu.Unlock()

	if n == nil {
		return nil, fmt.Errorf("node '%s': %w", nodeName, util.ErrNotFound)
	}
	if !n.Provisioned() {
		return nil, fmt.Errorf("node '%s' has no management address: %w", nodeName, util.ErrNotProvisioned)
	}

	local, remote := net.Pipe()
	go func() {
		io.Copy(remote, remote) // echo until the caller closes
		remote.Close()
	}()
	return local, nil
}

func deterministicMAC(name string) string {
	h := hashOf(name)
	return fmt.Sprintf("02:00:%02x:%02x:%02x:%02x",
		byte(h>>24), byte(h>>16), byte(h>>8), byte(h))
}

func hashOf(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}

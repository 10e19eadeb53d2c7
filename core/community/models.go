package community

import (
	"time"

	"github.com/pcacademy/backend/core"
)

// Component slot types, in display order.
const (
	ComponentCPU         = "CPU"
	ComponentMotherboard = "Motherboard"
	ComponentCooler      = "Cooler"
	ComponentRAM         = "RAM"
	ComponentStorage     = "Storage"
	ComponentGPU         = "GPU"
	ComponentPSU         = "PSU"
	ComponentCase        = "Case"
	ComponentCaseFans    = "Case Fans"
)

type (
	Component struct {
		Type string `json:"type"`
		Name string `json:"name"`
	}

	// Build is a user-shared PC build on the community board.
	Build struct {
		ID          string      `json:"id"`
		Title       string      `json:"title"`
		Description string      `json:"description"`
		Author      string      `json:"author"`
		AuthorEmail string      `json:"authorEmail"`
		Components  []Component `json:"components"`
		ImagePath   string      `json:"imagePath,omitempty"`
		ImageURL    string      `json:"imageUrl,omitempty"`
		CreatedAt   time.Time   `json:"createdAt"`
		UpdatedAt   time.Time   `json:"updatedAt"`
	}

	// BuildForm carries the named component slots of the build-sharing form.
	// Submitted as JSON, or as multipart form data when a photo is attached.
	BuildForm struct {
		Title       string `json:"title" form:"title" validate:"required,max=120"`
		Description string `json:"description" form:"description" validate:"max=2000"`
		CPU         string `json:"cpu" form:"cpu" validate:"required"`
		Motherboard string `json:"motherboard" form:"motherboard" validate:"required"`
		Cooler      string `json:"cooler" form:"cooler"`
		RAM         string `json:"ram" form:"ram" validate:"required"`
		Storage     string `json:"storage" form:"storage" validate:"required"`
		GPU         string `json:"gpu" form:"gpu"`
		PSU         string `json:"psu" form:"psu" validate:"required"`
		Case        string `json:"case" form:"case"`
		CaseFans    string `json:"case_fans" form:"case_fans"`
	}
)

func (f *BuildForm) Validate() error {
	f.Title = core.CleanString(f.Title)
	f.Description = core.CleanString(f.Description)
	return core.Validate.Struct(f)
}

// Components maps the form's named slots onto the stored component list,
// skipping empty optional slots.
func (f BuildForm) Components() []Component {
	slots := []Component{
		{ComponentCPU, f.CPU},
		{ComponentMotherboard, f.Motherboard},
		{ComponentCooler, f.Cooler},
		{ComponentRAM, f.RAM},
		{ComponentStorage, f.Storage},
		{ComponentGPU, f.GPU},
		{ComponentPSU, f.PSU},
		{ComponentCase, f.Case},
		{ComponentCaseFans, f.CaseFans},
	}
	out := make([]Component, 0, len(slots))
	for _, c := range slots {
		if core.CleanString(c.Name) != "" {
			c.Name = core.CleanString(c.Name)
			out = append(out, c)
		}
	}
	return out
}

// Summary returns the build's components as a plain text listing, one slot per
// line. Used as input to the AI config analyzer.
func (b Build) Summary() string {
	var s string
	for _, c := range b.Components {
		s += c.Type + ": " + c.Name + "\n"
	}
	return s
}

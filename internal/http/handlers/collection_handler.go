package handlers

import (
	"errors"
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"github.com/nnamdiindu/cara-store/internal/domain"
	applog "github.com/nnamdiindu/cara-store/internal/log"
	"github.com/nnamdiindu/cara-store/internal/repos"
	"github.com/nnamdiindu/cara-store/internal/services"
	"github.com/nnamdiindu/cara-store/internal/validate"
)

type CollectionHandler struct {
	Catalog *services.CatalogService
}

// GET /shop
func (h *CollectionHandler) Shop(c *fiber.Ctx) error {
	cols, err := h.Catalog.List()
	if err != nil {
		applog.Error(c, "shop.list.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load the shop"})
	}
	return render(c, "shop", fiber.Map{"Collections": cols})
}

// GET /collection_image/:id serves the stored image bytes verbatim.
func (h *CollectionHandler) Image(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.SendStatus(fiber.StatusNotFound)
	}
	col, err := h.Catalog.Get(id)
	if err != nil {
		return c.SendStatus(fiber.StatusNotFound)
	}
	c.Set(fiber.HeaderContentType, col.Mimetype)
	return c.Send(col.Data)
}

// GET /add-collection
func (h *CollectionHandler) AddForm(c *fiber.Ctx) error {
	return render(c, "add_collection", fiber.Map{"Err": ""})
}

// POST /add-collection (multipart form with an image_file field)
func (h *CollectionHandler) Add(c *fiber.Ctx) error {
	fields, err := h.parseForm(c, true)
	if err != nil {
		applog.Security(c, "collection.add.reject", map[string]any{"reason": err.Error()})
		return c.Status(fiber.StatusBadRequest).Render("add_collection", fiber.Map{"Err": err.Error()})
	}

	id, err := h.Catalog.Add(fields)
	if err != nil {
		applog.Error(c, "collection.add.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("add_collection", fiber.Map{"Err": "Error saving collection. Please try again."})
	}
	applog.Audit(c, "collection.add", map[string]any{"collection_id": id})
	return c.Redirect("/shop")
}

// GET /edit/:id pre-populates the form with current values.
func (h *CollectionHandler) EditForm(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Collection not found"})
	}
	col, err := h.Catalog.Get(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Collection not found"})
	}
	return render(c, "edit_collection", fiber.Map{"C": col, "Err": ""})
}

// POST /edit/:id (image upload optional)
func (h *CollectionHandler) Edit(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Collection not found"})
	}
	current, err := h.Catalog.Get(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Collection not found"})
	}

	fields, err := h.parseForm(c, false)
	if err != nil {
		applog.Security(c, "collection.edit.reject", map[string]any{"collection_id": id, "reason": err.Error()})
		return c.Status(fiber.StatusBadRequest).Render("edit_collection", fiber.Map{"C": current, "Err": err.Error()})
	}
	fields.ID = id

	if err := h.Catalog.Edit(fields); err != nil {
		applog.Error(c, "collection.edit.fail", err, map[string]any{"collection_id": id})
		return c.Status(fiber.StatusInternalServerError).Render("edit_collection", fiber.Map{"C": current, "Err": "Error updating collection. Please try again."})
	}
	applog.Audit(c, "collection.edit", map[string]any{"collection_id": id})
	return c.Redirect("/shop")
}

// POST /delete_collection/:id
func (h *CollectionHandler) Delete(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Collection not found"})
	}
	if err := h.Catalog.Remove(id); err != nil {
		if errors.Is(err, repos.ErrCollectionInUse) {
			applog.Info(c, "collection.delete.in_use", map[string]any{"collection_id": id})
			return c.Status(fiber.StatusConflict).Render("notfound", fiber.Map{"Message": "This collection has orders and cannot be deleted."})
		}
		if errors.Is(err, repos.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Collection not found"})
		}
		applog.Error(c, "collection.delete.fail", err, map[string]any{"collection_id": id})
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Error deleting collection. Please try again."})
	}
	applog.Audit(c, "collection.delete", map[string]any{"collection_id": id})
	return c.Redirect("/shop")
}

var (
	errBadPrice = errors.New("Invalid amount value")
	errBadFile  = errors.New("Invalid file type. Please upload an image file.")
	errNoFields = errors.New("Brand name and description are required")
)

// parseForm validates the shared add/edit form. The image is mandatory on
// add and optional on edit; when present it must pass the extension
// allow-list before anything is read.
func (h *CollectionHandler) parseForm(c *fiber.Ctx, imageRequired bool) (domain.Collection, error) {
	brand, ok := validate.Name(c.FormValue("brand_name"))
	if !ok {
		return domain.Collection{}, errNoFields
	}
	desc, ok := validate.Description(c.FormValue("description"))
	if !ok {
		return domain.Collection{}, errNoFields
	}
	amount, ok := validate.Price(c.FormValue("amount"))
	if !ok {
		return domain.Collection{}, errBadPrice
	}

	out := domain.Collection{BrandName: brand, Description: desc, Amount: amount}

	fh, err := c.FormFile("image_file")
	if err != nil || fh == nil || fh.Filename == "" {
		if imageRequired {
			return domain.Collection{}, errBadFile
		}
		return out, nil
	}

	name, ok := validate.ImageFilename(fh.Filename)
	if !ok {
		return domain.Collection{}, errBadFile
	}
	data, err := readUpload(fh)
	if err != nil {
		return domain.Collection{}, err
	}
	out.Filename = name
	out.Data = data
	out.Mimetype = fh.Header.Get("Content-Type")
	return out, nil
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

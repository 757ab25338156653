package common

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"time"

	"github.com/nfnt/resize"
	"github.com/tavern-lab/backend/pkg/errorx"
	"github.com/tavern-lab/backend/pkg/storage"
	"github.com/tavern-lab/backend/pkg/xcontext"
)

const (
	PortraitBucket = "portraits"
	DefaultMapEdge = 2048
)

type size struct {
	w int
	h int
}

func (s size) String() string {
	return fmt.Sprintf("%dx%d", s.w, s.h)
}

var PortraitSizes = []size{
	{w: 512, h: 512},
	{w: 128, h: 128},
	{w: 32, h: 32},
}

type uploadedImage struct {
	img      image.Image
	mime     string
	filename string
}

func readImage(ctx context.Context, key string) (*uploadedImage, error) {
	req := xcontext.HTTPRequest(ctx)
	if req == nil {
		return nil, errorx.New(errorx.BadRequest, "Request must be multipart form")
	}

	if err := req.ParseMultipartForm(xcontext.Configs(ctx).File.MaxMemory); err != nil {
		return nil, errorx.New(errorx.BadRequest, "Request must be multipart form")
	}

	file, header, err := req.FormFile(key)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Error retrieving the file")
	}
	defer file.Close()

	mime := header.Header.Get("Content-Type")
	img, err := decodeImg(mime, file)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid image: %v", err)
	}

	return &uploadedImage{img: img, mime: mime, filename: header.Filename}, nil
}

// ProcessPortrait uploads the image found at form key in every portrait size
// and returns the responses in PortraitSizes order.
func ProcessPortrait(ctx context.Context, fileStorage storage.Storage, key string) ([]*storage.UploadResponse, error) {
	uploaded, err := readImage(ctx, key)
	if err != nil {
		return nil, err
	}

	objs := make([]*storage.UploadObject, 0, len(PortraitSizes))
	for _, size := range PortraitSizes {
		img := resize.Resize(uint(size.w), uint(size.h), uploaded.img, resize.Lanczos2)
		b, err := encodeImg(uploaded.mime, img)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot encode image: %v", err)
			return nil, errorx.Unknown
		}

		objs = append(objs, &storage.UploadObject{
			Bucket:      PortraitBucket,
			Folder:      "characters",
			Name:        fmt.Sprintf("%s-%d-%s", size, time.Now().UnixNano(), uploaded.filename),
			ContentType: uploaded.mime,
			Data:        b,
		})
	}

	uresp, err := fileStorage.BulkUpload(ctx, objs)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot upload image: %v", err)
		return nil, errorx.Unknown
	}

	return uresp, nil
}

// ProcessMap downsizes the image found at form key so that its longest edge
// is at most the configured map edge, keeping the aspect ratio.
func ProcessMap(ctx context.Context, fileStorage storage.Storage, key string) (*storage.UploadResponse, error) {
	uploaded, err := readImage(ctx, key)
	if err != nil {
		return nil, err
	}

	cfg := xcontext.Configs(ctx).File
	maxEdge := cfg.MapMaxEdge
	if maxEdge <= 0 {
		maxEdge = DefaultMapEdge
	}

	img := uploaded.img
	bounds := img.Bounds()
	if bounds.Dx() > maxEdge || bounds.Dy() > maxEdge {
		img = resize.Thumbnail(uint(maxEdge), uint(maxEdge), img, resize.Lanczos2)
	}

	b, err := encodeImg(uploaded.mime, img)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot encode image: %v", err)
		return nil, errorx.Unknown
	}

	resp, err := fileStorage.Upload(ctx, &storage.UploadObject{
		Bucket:      cfg.MapBucket,
		Folder:      "maps",
		Name:        fmt.Sprintf("%d-%s", time.Now().UnixNano(), uploaded.filename),
		ContentType: uploaded.mime,
		Data:        b,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot upload map: %v", err)
		return nil, errorx.Unknown
	}

	return resp, nil
}

func decodeImg(mime string, data io.Reader) (img image.Image, err error) {
	switch mime {
	case "image/jpeg":
		img, err = jpeg.Decode(data)
	case "image/png", "application/octet-stream":
		img, err = png.Decode(data)
	case "image/gif":
		img, err = gif.Decode(data)
	default:
		return nil, fmt.Errorf("only jpeg, gif or png are accepted")
	}
	return img, err
}

func encodeImg(mime string, img image.Image) (b []byte, err error) {
	buf := new(bytes.Buffer)

	switch mime {
	case "image/jpeg":
		err = jpeg.Encode(buf, img, nil)
	case "image/png", "application/octet-stream":
		err = png.Encode(buf, img)
	case "image/gif":
		err = gif.Encode(buf, img, nil)
	default:
		return nil, fmt.Errorf("only jpeg, gif or png are accepted")
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), err
}

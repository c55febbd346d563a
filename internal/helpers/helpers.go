package helpers

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"golang.org/x/crypto/bcrypt"
)

const (
	ListingFolder = "listings"
)

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)

func IsValidUsername(username string) bool {
	return usernameRe.MatchString(username)
}

func IsPasswordStrong(password string) bool {
	if len(password) < 8 {
		return false
	}
	hasLower := regexp.MustCompile(`[a-z]`).MatchString(password)
	hasUpper := regexp.MustCompile(`[A-Z]`).MatchString(password)
	hasNumber := regexp.MustCompile(`\d`).MatchString(password)
	hasSpecial := regexp.MustCompile(`[@$!%*?&]`).MatchString(password)
	return hasLower && hasUpper && hasNumber && hasSpecial
}

func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %v", err)
	}
	return string(b), nil
}

func CheckPassword(password, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)) == nil
}

// GenerateEmailToken returns a high-entropy token mailed to the user in
// plaintext; only its sha256 is persisted.
func GenerateEmailToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %v", err)
	}
	return hex.EncodeToString(buf), nil
}

// GeneratePhoneCode returns a random 6-digit code, zero-padded.
func GeneratePhoneCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %v", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// HashVerificationSecret is the one-way form tokens and codes are stored and
// looked up in. bcrypt is deliberately not used here: redemption looks up by
// hash, which needs a deterministic digest.
func HashVerificationSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// CloudinaryImages is the Cloudinary-backed image store used by the listing
// service.
type CloudinaryImages struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryImages(cld *cloudinary.Cloudinary) *CloudinaryImages {
	return &CloudinaryImages{cld: cld}
}

func (c *CloudinaryImages) Upload(ctx context.Context, images []string, folder string) ([]string, []string, error) {
	return UploadImages(ctx, c.cld, images, folder)
}

func (c *CloudinaryImages) Delete(ctx context.Context, publicIDs []string) {
	DeleteImages(ctx, c.cld, publicIDs)
}

func UploadImages(ctx context.Context, cld *cloudinary.Cloudinary, images []string, folder string) ([]string, []string, error) {
	var urls []string
	var publicIDs []string

	for i, img := range images {
		if strings.TrimSpace(img) == "" {
			return nil, nil, fmt.Errorf("empty image at index %d", i)
		}
		uploadResult, err := cld.Upload.Upload(ctx, img, uploader.UploadParams{
			Folder: folder,
			Tags:   []string{"sellit"},
		})
		if err != nil {
			// Roll back whatever made it up so a failed create leaves nothing
			// behind.
			DeleteImages(ctx, cld, publicIDs)
			return nil, nil, fmt.Errorf("failed to upload image %d: %v", i, err)
		}
		urls = append(urls, uploadResult.SecureURL)
		publicIDs = append(publicIDs, uploadResult.PublicID)
	}

	return urls, publicIDs, nil
}

func DeleteImages(ctx context.Context, cld *cloudinary.Cloudinary, publicIDs []string) {
	for _, id := range publicIDs {
		_, _ = cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: id})
	}
}

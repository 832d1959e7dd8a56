package credentials_test

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/okian/leadsplit/internal/domain/credentials"
	"github.com/okian/leadsplit/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestAddressRules(t *testing.T) {
	convey.Convey("Given the address rules", t, func() {
		convey.Convey("Then emails need a local part, an @ and a dotted domain", func() {
			convey.So(credentials.ValidEmail("ann@example.com"), convey.ShouldBeTrue)
			convey.So(credentials.ValidEmail("ann@example"), convey.ShouldBeFalse)
			convey.So(credentials.ValidEmail("ann.example.com"), convey.ShouldBeFalse)
		})

		convey.Convey("Then mobiles must be E.164 with 8 to 15 digits", func() {
			convey.So(credentials.ValidMobile("+919876543210"), convey.ShouldBeTrue)
			convey.So(credentials.ValidMobile("+12345678"), convey.ShouldBeTrue)
			convey.So(credentials.ValidMobile("+1234567"), convey.ShouldBeFalse)
			convey.So(credentials.ValidMobile("+0123456789"), convey.ShouldBeFalse)
			convey.So(credentials.ValidMobile("9876543210"), convey.ShouldBeFalse)
			convey.So(credentials.ValidMobile("+1234567890123456"), convey.ShouldBeFalse)
		})
	})
}

func TestPasswords(t *testing.T) {
	convey.Convey("Given a hashed password", t, func() {
		hash, err := credentials.HashPassword("s3cret!")
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Then the hash should not be the password", func() {
			convey.So(hash, convey.ShouldNotEqual, "s3cret!")
		})

		convey.Convey("Then only the right password should match", func() {
			convey.So(credentials.CheckPassword(hash, "s3cret!"), convey.ShouldBeTrue)
			convey.So(credentials.CheckPassword(hash, "wrong"), convey.ShouldBeFalse)
			convey.So(credentials.CheckPassword("not-a-hash", "s3cret!"), convey.ShouldBeFalse)
		})
	})
}

func TestPasswordLength(t *testing.T) {
	convey.Convey("Given passwords near the bcrypt limit", t, func() {
		convey.Convey("Then 72 bytes should hash", func() {
			_, err := credentials.HashPassword(strings.Repeat("a", credentials.MaxPasswordBytes))
			convey.So(err, convey.ShouldBeNil)
		})

		convey.Convey("Then 30 multibyte characters should be invalid input", func() {
			pw := strings.Repeat("€", 30)
			convey.So(len([]rune(pw)), convey.ShouldBeLessThan, credentials.MaxPasswordBytes)
			_, err := credentials.HashPassword(pw)
			convey.So(errors.Is(err, model.ErrInvalidInput), convey.ShouldBeTrue)
		})
	})
}

func TestNewOTP(t *testing.T) {
	convey.Convey("Given generated one-time codes", t, func() {
		convey.Convey("Then each should be six digits in range", func() {
			for i := 0; i < 200; i++ {
				code, err := credentials.NewOTP()
				convey.So(err, convey.ShouldBeNil)
				convey.So(code, convey.ShouldHaveLength, 6)
				n, err := strconv.Atoi(code)
				convey.So(err, convey.ShouldBeNil)
				convey.So(n, convey.ShouldBeBetweenOrEqual, 100000, 999999)
			}
		})
	})
}

package account

import "github.com/parcelreg/parcel/internal/registry"

func validateRegistration(reg registry.Registration) error {
	if err := registry.ValidateName("username", reg.Username); err != nil {
		return err
	}
	if err := registry.ValidateEmail(reg.Email); err != nil {
		return err
	}
	if err := registry.ValidatePassword(reg.Password); err != nil {
		return err
	}
	if reg.Firstname == "" || reg.Lastname == "" {
		return registry.Errorf(registry.KindValidation, "firstname and lastname are required")
	}
	return nil
}

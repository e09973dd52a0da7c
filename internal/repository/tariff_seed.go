package repository

import (
	"context"

	"github.com/Limense/cochera-management-system-sub000/internal/domain"
)

// SeedDefaults installs a baseline tariff set so the exit flow always has a
// rule to resolve. Amounts are currency minor units.
func (r TariffRepository) SeedDefaults(ctx context.Context) error {
	maxCar := int64(3500)
	defaults := []domain.TariffRule{
		{Name: "Car day", VehicleClass: domain.ClassCar, Weekdays: domain.EveryDay,
			StartMinute: 6 * 60, EndMinute: 22 * 60,
			FirstHourRate: 600, AdditionalHourRate: 300, MinimumCharge: 250, MaximumCharge: &maxCar,
			Priority: 10, Active: true},
		{Name: "Car night", VehicleClass: domain.ClassCar, Weekdays: domain.EveryDay,
			StartMinute: 22 * 60, EndMinute: 6 * 60,
			FirstHourRate: 400, AdditionalHourRate: 200, MinimumCharge: 250,
			Priority: 20, Active: true},
		{Name: "Car weekend", VehicleClass: domain.ClassCar, Weekdays: domain.Weekend,
			StartMinute: 0, EndMinute: 24 * 60,
			FirstHourRate: 500, AdditionalHourRate: 250, MinimumCharge: 250,
			Priority: 15, Active: true},
		{Name: "Motorcycle flat", VehicleClass: domain.ClassMotorcycle, Weekdays: domain.EveryDay,
			StartMinute: 0, EndMinute: 24 * 60,
			FirstHourRate: 300, AdditionalHourRate: 150, MinimumCharge: 150,
			Priority: 10, Active: true},
	}

	for _, t := range defaults {
		// Idempotent: tariff_rules.name is unique.
		_, err := r.DB.Pool.Exec(ctx, `
			INSERT INTO tariff_rules
			(name, vehicle_class, weekday_mask, start_minute, end_minute,
			 first_hour_rate, additional_hour_rate, minimum_charge, maximum_charge, priority, active)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
			ON CONFLICT (name) DO NOTHING
		`, t.Name, t.VehicleClass, int(t.Weekdays), t.StartMinute, t.EndMinute,
			t.FirstHourRate, t.AdditionalHourRate, t.MinimumCharge, t.MaximumCharge,
			t.Priority, t.Active)
		if err != nil {
			return err
		}
	}
	return nil
}

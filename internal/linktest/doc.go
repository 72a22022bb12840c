// Package linktest provides scripted in-memory fakes for the hal
// contracts (RadioPHY, USBHID), grounded on hal.MemoryNVS's in-memory
// fake pattern, for exercising trackerlink/receiverlink without real
// firmware peripherals.
package linktest
